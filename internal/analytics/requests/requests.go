// Package requests wraps a search server and keeps outcome statistics for
// a sliding window of the most recent queries.
package requests

import (
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/metrics"
)

// DefaultCapacity covers one request per minute over a day.
const DefaultCapacity = 1440

// Finder is the part of the search server the queue forwards to.
type Finder interface {
	FindTopDocuments(rawQuery string, pred ranker.Predicate, mode execution.Mode) ([]ranker.Document, error)
}

// Queue records whether each of the last capacity queries returned
// anything. It is safe for concurrent use.
type Queue struct {
	finder   Finder
	metrics  *metrics.Metrics
	mu       sync.Mutex
	window   []bool
	next     int
	size     int
	noResult int
	logger   *slog.Logger
}

// NewQueue creates a queue in front of finder. A capacity below 1 uses
// DefaultCapacity. m may be nil.
func NewQueue(finder Finder, capacity int, m *metrics.Metrics) *Queue {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Queue{
		finder:  finder,
		metrics: m,
		window:  make([]bool, capacity),
		logger:  slog.Default().With("component", "request-queue"),
	}
}

// AddFindRequest runs the query and records its outcome. Failed queries are
// returned to the caller and not recorded.
func (q *Queue) AddFindRequest(rawQuery string, pred ranker.Predicate, mode execution.Mode) ([]ranker.Document, error) {
	docs, err := q.finder.FindTopDocuments(rawQuery, pred, mode)
	if err != nil {
		return nil, err
	}
	q.record(len(docs) > 0)
	return docs, nil
}

// NoResultRequests returns how many retained queries returned nothing.
func (q *Queue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResult
}

// Len returns the number of retained queries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *Queue) Capacity() int {
	return len(q.window)
}

func (q *Queue) record(hadResults bool) {
	q.mu.Lock()
	if q.size == len(q.window) {
		if !q.window[q.next] {
			q.noResult--
		}
	} else {
		q.size++
	}
	q.window[q.next] = hadResults
	if !hadResults {
		q.noResult++
	}
	q.next = (q.next + 1) % len(q.window)
	noResult := q.noResult
	if q.metrics != nil {
		q.metrics.NoResultRequests.Set(float64(noResult))
	}
	q.mu.Unlock()

	if !hadResults {
		q.logger.Debug("query returned no documents", "no_result_requests", noResult)
	}
}
