// Package shardmap provides a fixed-shard concurrent map keyed by integers.
// Each shard is an independent map guarded by its own mutex, so writers on
// different shards never block each other. Values are only reachable through
// scoped callbacks that hold the shard lock for their duration.
package shardmap

import (
	"cmp"
	"encoding/binary"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key is the set of integer types a Map can be keyed by.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Entry is one key/value pair returned by Snapshot.
type Entry[K Key, V any] struct {
	Key   K
	Value V
}

type shard[K Key, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

type Map[K Key, V any] struct {
	shards []shard[K, V]
}

// New creates a map with shardCount shards. shardCount below one is treated
// as one.
func New[K Key, V any](shardCount int) *Map[K, V] {
	if shardCount < 1 {
		shardCount = 1
	}
	m := &Map[K, V]{shards: make([]shard[K, V], shardCount)}
	for i := range m.shards {
		m.shards[i].m = make(map[K]V)
	}
	return m
}

// ShardCount returns the number of shards fixed at construction.
func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}

// ShardOf returns the shard index owning key.
func (m *Map[K, V]) ShardOf(key K) int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return int(xxhash.Sum64(buf[:]) % uint64(len(m.shards)))
}

// Update runs fn on the slot for key while holding the owning shard's lock.
// A missing key starts from the zero value of V.
func (m *Map[K, V]) Update(key K, fn func(v *V)) {
	s := &m.shards[m.ShardOf(key)]
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.m[key]
	fn(&v)
	s.m[key] = v
}

// Load returns the value stored for key.
func (m *Map[K, V]) Load(key K) (V, bool) {
	s := &m.shards[m.ShardOf(key)]
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Erase removes key if present.
func (m *Map[K, V]) Erase(key K) {
	s := &m.shards[m.ShardOf(key)]
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Len counts entries across all shards, locking them in ascending order.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.m)
		s.mu.Unlock()
	}
	return n
}

// Snapshot copies every shard into one slice ordered by ascending key.
// Shards are locked one at a time in ascending index order.
func (m *Map[K, V]) Snapshot() []Entry[K, V] {
	var out []Entry[K, V]
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.m {
			out = append(out, Entry[K, V]{Key: k, Value: v})
		}
		s.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b Entry[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
