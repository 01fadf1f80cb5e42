// Package searcher ties the in-memory index, query parser, ranker, and
// matcher together behind the operations applications call.
package searcher

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/matcher"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/metrics"
)

type Options struct {
	StopWords []string
	// Shards sizes the relevance accumulator used by parallel ranking.
	Shards int
	// Workers bounds every parallel fan-out; zero means GOMAXPROCS.
	Workers int
	// QueryCacheSize is the number of parsed queries kept; zero disables
	// the cache.
	QueryCacheSize int
	// Metrics is optional.
	Metrics *metrics.Metrics
}

type Server struct {
	index   *index.MemoryIndex
	ranker  *ranker.Ranker
	matcher *matcher.Matcher
	queries *lru.Cache[string, *parser.Query]
	parsing singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New validates the stop words and builds an empty server.
func New(opts Options) (*Server, error) {
	stopWords, err := tokenizer.NewStopWords(opts.StopWords)
	if err != nil {
		return nil, fmt.Errorf("building stop words: %w", err)
	}
	idx := index.NewMemoryIndex(stopWords, opts.Workers)
	s := &Server{
		index:   idx,
		ranker:  ranker.New(idx, opts.Shards, opts.Workers),
		matcher: matcher.New(idx, opts.Workers),
		metrics: opts.Metrics,
		logger:  slog.Default().With("component", "search-server"),
	}
	if opts.QueryCacheSize > 0 {
		cache, err := lru.New[string, *parser.Query](opts.QueryCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating query cache: %w", err)
		}
		s.queries = cache
	}
	return s, nil
}

func (s *Server) AddDocument(docID int, text string, status index.Status, ratings []int) error {
	if err := s.index.AddDocument(docID, text, status, ratings); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.Documents.Set(float64(s.index.DocCount()))
	}
	return nil
}

// FindTopDocuments ranks documents accepted by pred against rawQuery. A nil
// pred accepts only active documents.
func (s *Server) FindTopDocuments(rawQuery string, pred ranker.Predicate, mode execution.Mode) ([]ranker.Document, error) {
	start := time.Now()
	q, err := s.parse(rawQuery)
	if err != nil {
		s.observeSearch(mode, start, -1)
		return nil, err
	}
	if pred == nil {
		pred = ranker.ByStatus(index.StatusActive)
	}
	docs := s.ranker.Rank(mode, q, pred)
	s.observeSearch(mode, start, len(docs))
	s.logger.Debug("query ranked",
		"query", rawQuery,
		"mode", mode.String(),
		"plus_terms", len(q.PlusTerms),
		"minus_terms", len(q.MinusTerms),
		"results", len(docs),
		"latency", time.Since(start),
	)
	return docs, nil
}

// MatchDocument returns the query's plus terms present in docID, or none if
// a minus term is present, with the document's status.
func (s *Server) MatchDocument(rawQuery string, docID int, mode execution.Mode) ([]string, index.Status, error) {
	q, err := s.parse(rawQuery)
	if err != nil {
		return nil, 0, err
	}
	return s.matcher.Match(mode, q, docID)
}

func (s *Server) GetWordFrequencies(docID int) map[string]float64 {
	return s.index.WordFrequencies(docID)
}

// RemoveDocument deletes docID. Unknown ids are ignored in both modes.
func (s *Server) RemoveDocument(docID int, mode execution.Mode) {
	if !s.index.RemoveDocument(mode, docID) {
		return
	}
	if s.metrics != nil {
		s.metrics.DocsRemovedTotal.WithLabelValues(mode.String()).Inc()
		s.metrics.Documents.Set(float64(s.index.DocCount()))
	}
}

func (s *Server) DocumentCount() int {
	return s.index.DocCount()
}

// IDs yields live document ids in ascending order.
func (s *Server) IDs() iter.Seq[int] {
	return s.index.IDs()
}

func (s *Server) StopWords() []string {
	return s.index.StopWords().Words()
}

// parse returns the parsed query, consulting the cache when enabled. Cached
// queries are shared and must not be modified.
func (s *Server) parse(rawQuery string) (*parser.Query, error) {
	if s.queries == nil {
		q, err := parser.Parse(rawQuery, s.index.StopWords())
		if err != nil {
			return nil, fmt.Errorf("parsing query: %w", err)
		}
		return q, nil
	}
	if q, ok := s.queries.Get(rawQuery); ok {
		if s.metrics != nil {
			s.metrics.QueryCacheHitsTotal.Inc()
		}
		return q, nil
	}
	if s.metrics != nil {
		s.metrics.QueryCacheMissTotal.Inc()
	}

	// concurrent misses for one query parse it once
	v, err, _ := s.parsing.Do(rawQuery, func() (any, error) {
		q, err := parser.Parse(rawQuery, s.index.StopWords())
		if err != nil {
			return nil, err
		}
		s.queries.Add(rawQuery, q)
		return q, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}
	return v.(*parser.Query), nil
}

// observeSearch records one search; results < 0 marks a failed query.
func (s *Server) observeSearch(mode execution.Mode, start time.Time, results int) {
	if s.metrics == nil {
		return
	}
	resultType := "hit"
	switch {
	case results < 0:
		resultType = "error"
	case results == 0:
		resultType = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(mode.String(), resultType).Inc()
	s.metrics.SearchLatency.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	if results >= 0 {
		s.metrics.SearchResultsCount.Observe(float64(results))
	}
}
