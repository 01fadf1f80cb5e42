package shardmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAndSnapshot(t *testing.T) {
	m := New[int, float64](7)
	m.Update(5, func(v *float64) { *v += 1.5 })
	m.Update(1, func(v *float64) { *v += 2 })
	m.Update(5, func(v *float64) { *v += 0.5 })

	snap := m.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, Entry[int, float64]{Key: 1, Value: 2}, snap[0])
	assert.Equal(t, Entry[int, float64]{Key: 5, Value: 2}, snap[1])
	assert.Equal(t, 2, m.Len())

	// a snapshot does not empty the map
	assert.Len(t, m.Snapshot(), 2)
}

func TestErase(t *testing.T) {
	m := New[int, int](3)
	m.Update(10, func(v *int) { *v = 1 })
	m.Erase(10)
	m.Erase(99)
	_, ok := m.Load(10)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestShardOfIsStable(t *testing.T) {
	m := New[int, int](16)
	for key := 0; key < 1000; key++ {
		first := m.ShardOf(key)
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 16)
		assert.Equal(t, first, m.ShardOf(key))
	}
}

func TestSingleShardFallback(t *testing.T) {
	m := New[uint32, int](0)
	assert.Equal(t, 1, m.ShardCount())
	m.Update(3, func(v *int) { *v++ })
	v, ok := m.Load(3)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestConcurrentAccumulation(t *testing.T) {
	m := New[int, int](8)
	const (
		goroutines = 16
		keys       = 100
		rounds     = 50
	)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				for k := 0; k < keys; k++ {
					m.Update(k, func(v *int) { *v++ })
				}
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	require.Len(t, snap, keys)
	for i, e := range snap {
		assert.Equal(t, i, e.Key)
		assert.Equal(t, goroutines*rounds, e.Value)
	}
}

func TestConcurrentEraseAndSnapshot(t *testing.T) {
	m := New[int, int](4)
	for k := 0; k < 200; k++ {
		m.Update(k, func(v *int) { *v = k })
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for k := 0; k < 200; k += 2 {
			m.Erase(k)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = m.Snapshot()
		}
	}()
	wg.Wait()

	snap := m.Snapshot()
	require.Len(t, snap, 100)
	for _, e := range snap {
		assert.Equal(t, 1, e.Key%2)
	}
}

func BenchmarkUpdateParallel(b *testing.B) {
	m := New[int, float64](150)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		k := 0
		for pb.Next() {
			m.Update(k%10000, func(v *float64) { *v += 0.25 })
			k++
		}
	})
}
