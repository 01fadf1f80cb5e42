package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

func newServer(t testing.TB) *searcher.Server {
	t.Helper()
	s, err := searcher.New(searcher.Options{StopWords: []string{"and", "with"}})
	require.NoError(t, err)
	texts := []string{
		"funny pet and nasty rat",
		"funny pet with curly hair",
		"funny pet and not very nasty rat",
		"pet with rat and rat and rat",
		"nasty rat with curly hair",
	}
	for i, text := range texts {
		require.NoError(t, s.AddDocument(i+1, text, index.StatusActive, []int{1, 2}))
	}
	return s
}

func TestProcessQueries(t *testing.T) {
	s := newServer(t)
	queries := []string{"nasty rat -not", "not very funny nasty pet", "curly hair"}

	results, err := ProcessQueries(s, queries, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, results[0], 3)
	assert.Len(t, results[1], 5)
	assert.Len(t, results[2], 2)

	for i, raw := range queries {
		want, err := s.FindTopDocuments(raw, nil, execution.Sequential)
		require.NoError(t, err)
		assert.Equal(t, want, results[i])
	}
}

func TestProcessQueriesJoined(t *testing.T) {
	s := newServer(t)
	queries := []string{"nasty rat -not", "not very funny nasty pet", "curly hair"}

	joined, err := ProcessQueriesJoined(s, queries, 0)
	require.NoError(t, err)
	require.Len(t, joined, 10)

	results, err := ProcessQueries(s, queries, 1)
	require.NoError(t, err)
	offset := 0
	for _, docs := range results {
		assert.Equal(t, docs, joined[offset:offset+len(docs)])
		offset += len(docs)
	}
}

func TestProcessQueriesEmpty(t *testing.T) {
	results, err := ProcessQueries(newServer(t), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, results)

	joined, err := ProcessQueriesJoined(newServer(t), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, joined)
}

func TestProcessQueriesReportsFirstFailure(t *testing.T) {
	queries := []string{"rat", "bad --query", "curly -", "hair"}
	_, err := ProcessQueries(newServer(t), queries, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidQueryWord))
	assert.Contains(t, err.Error(), "query 1")
}

func BenchmarkProcessQueries(b *testing.B) {
	s := newServer(b)
	queries := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		queries = append(queries, "funny nasty -curly pet hair")
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ProcessQueries(s, queries, 0)
	}
}
