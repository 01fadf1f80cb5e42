package index

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

func newIndex(t testing.TB, stop string) *MemoryIndex {
	t.Helper()
	sw, err := tokenizer.ParseStopWords(stop)
	require.NoError(t, err)
	return NewMemoryIndex(sw, 4)
}

// assertConsistent checks that forward and inverted maps mirror each other.
func assertConsistent(t *testing.T, m *MemoryIndex) {
	t.Helper()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for docID, freqs := range m.forward {
		for term, f := range freqs {
			pl, ok := m.inverted[term]
			require.True(t, ok, "term %q of doc %d missing from inverted map", term, docID)
			assert.Equal(t, f, pl.docs[docID])
		}
	}
	for term, pl := range m.inverted {
		assert.NotEmpty(t, pl.docs, "empty postings kept for %q", term)
		for docID, f := range pl.docs {
			assert.Equal(t, f, m.forward[docID][term], "posting %q/%d without forward entry", term, docID)
		}
	}
	assert.Equal(t, len(m.documents), int(m.ids.GetCardinality()))
}

func TestAddDocument(t *testing.T) {
	m := newIndex(t, "in the")
	require.NoError(t, m.AddDocument(3, "white cat and fashionable collar in the city", StatusActive, []int{8, -3}))

	freqs := m.WordFrequencies(3)
	assert.Len(t, freqs, 6)
	sum := 0.0
	for _, f := range freqs {
		sum += f
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	data, ok := m.Document(3)
	require.True(t, ok)
	assert.Equal(t, 2, data.Rating)
	assert.Equal(t, StatusActive, data.Status)
	assert.Equal(t, 1, m.DocCount())
	assertConsistent(t, m)
}

func TestAddDocumentRepeatedWords(t *testing.T) {
	m := newIndex(t, "")
	require.NoError(t, m.AddDocument(0, "good good good person", StatusActive, nil))
	freqs := m.WordFrequencies(0)
	assert.InDelta(t, 0.75, freqs["good"], 1e-12)
	assert.InDelta(t, 0.25, freqs["person"], 1e-12)

	postings := m.Postings("good")
	require.Len(t, postings, 1)
	assert.Equal(t, Posting{DocID: 0, Frequency: freqs["good"]}, postings[0])
}

func TestAddDocumentRejectsInvalidID(t *testing.T) {
	m := newIndex(t, "")
	err := m.AddDocument(-1, "cat", StatusActive, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidID))

	require.NoError(t, m.AddDocument(1, "cat", StatusActive, nil))
	err = m.AddDocument(1, "dog", StatusActive, nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidID))
	assert.Nil(t, m.Postings("dog"))
	assert.Equal(t, 1, m.DocCount())
}

func TestAddDocumentInvalidWordLeavesIndexUnchanged(t *testing.T) {
	m := newIndex(t, "")
	err := m.AddDocument(1, "good words then bad\x11word", StatusActive, []int{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidWord))
	assert.Equal(t, 0, m.DocCount())
	assert.Equal(t, 0, m.TermCount())
	_, ok := m.Document(1)
	assert.False(t, ok)
}

func TestStopWordOnlyDocument(t *testing.T) {
	m := newIndex(t, "in the")
	require.NoError(t, m.AddDocument(7, "in the the in", StatusBanned, []int{4, 5}))
	assert.Equal(t, 1, m.DocCount())
	assert.Empty(t, m.WordFrequencies(7))
	data, ok := m.Document(7)
	require.True(t, ok)
	assert.Equal(t, DocumentData{Rating: 4, Status: StatusBanned}, data)
	assert.Equal(t, 0, m.TermCount())

	m.RemoveDocument(execution.Sequential, 7)
	assert.Equal(t, 0, m.DocCount())
}

func TestRemoveDocument(t *testing.T) {
	for _, mode := range []execution.Mode{execution.Sequential, execution.Parallel} {
		t.Run(mode.String(), func(t *testing.T) {
			m := newIndex(t, "")
			require.NoError(t, m.AddDocument(1, "cat dog bird", StatusActive, nil))
			require.NoError(t, m.AddDocument(2, "cat fish", StatusActive, nil))

			assert.True(t, m.RemoveDocument(mode, 1))
			assert.Equal(t, 1, m.DocCount())
			assert.Empty(t, m.WordFrequencies(1))
			assert.False(t, m.Contains("cat", 1))
			assert.True(t, m.Contains("cat", 2))
			assert.Nil(t, m.Postings("dog"))
			assert.Equal(t, 2, m.TermCount())
			assertConsistent(t, m)

			// absent ids are ignored
			assert.False(t, m.RemoveDocument(mode, 1))
			assert.False(t, m.RemoveDocument(mode, 100))
			assert.Equal(t, 1, m.DocCount())

			// the id can be indexed again after removal
			require.NoError(t, m.AddDocument(1, "new text", StatusActive, nil))
			assert.Equal(t, 2, m.DocCount())
			assertConsistent(t, m)
		})
	}
}

func TestIDsAscendingAndRestartable(t *testing.T) {
	m := newIndex(t, "")
	for _, id := range []int{42, 3, 17, 0, 8} {
		require.NoError(t, m.AddDocument(id, fmt.Sprintf("doc %d", id), StatusActive, nil))
	}
	first := slices.Collect(m.IDs())
	assert.Equal(t, []int{0, 3, 8, 17, 42}, first)
	assert.Equal(t, first, slices.Collect(m.IDs()))

	for id := range m.IDs() {
		if id == 3 {
			break
		}
	}
	m.RemoveDocument(execution.Sequential, 17)
	assert.Equal(t, []int{0, 3, 8, 42}, slices.Collect(m.IDs()))
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0, averageRating(nil))
	assert.Equal(t, 2, averageRating([]int{1, 2, 3}))
	assert.Equal(t, 2, averageRating([]int{1, 2, 4}))
	assert.Equal(t, -1, averageRating([]int{-1, -2}))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusIrrelevant, StatusBanned, StatusRemoved} {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStatus("ACTUAL")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got)
	_, err = ParseStatus("archived")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestConcurrentRemoveAndRead(t *testing.T) {
	m := newIndex(t, "")
	const docs = 200
	for i := 0; i < docs; i++ {
		text := fmt.Sprintf("shared common word%d word%d", i, i%10)
		require.NoError(t, m.AddDocument(i, text, StatusActive, []int{i}))
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; i < docs; i += 4 {
				m.RemoveDocument(execution.Parallel, i)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			for _, p := range m.Postings("shared") {
				assert.False(t, math.IsNaN(p.Frequency))
			}
			_ = m.Contains("common", i)
		}
	}()
	wg.Wait()

	assert.Equal(t, 0, m.DocCount())
	assert.Equal(t, 0, m.TermCount())
	assertConsistent(t, m)
}

func BenchmarkMemoryIndexAdd(b *testing.B) {
	m := newIndex(b, "a the of")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.AddDocument(i, "this is a benchmark document with several terms for testing the indexing performance of our memory index", StatusActive, []int{1, 2, 3})
	}
}

func BenchmarkMemoryIndexPostingsParallel(b *testing.B) {
	m := newIndex(b, "")
	for i := 0; i < 10000; i++ {
		_ = m.AddDocument(i, "search engine with distributed indexing and query processing", StatusActive, nil)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = m.Postings("search")
		}
	})
}
