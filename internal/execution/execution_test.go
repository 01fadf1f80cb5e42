package execution

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":           Sequential,
		"seq":        Sequential,
		"Sequential": Sequential,
		"par":        Parallel,
		" parallel ": Parallel,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("turbo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, "parallel", Parallel.String())
}

func TestForEachSequentialOrder(t *testing.T) {
	var order []int
	ForEach(Sequential, 8, 5, func(i int) {
		order = append(order, i)
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestForEachParallelVisitsAll(t *testing.T) {
	const n = 1000
	seen := make([]atomic.Int32, n)
	var inFlight, peak atomic.Int32
	ForEach(Parallel, 3, n, func(i int) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		seen[i].Add(1)
		inFlight.Add(-1)
	})
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "index %d", i)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 4, Workers(4))
	assert.Positive(t, Workers(0))
}
