// Package batch evaluates many queries against one server concurrently.
package batch

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/ranker"
)

type Finder interface {
	FindTopDocuments(rawQuery string, pred ranker.Predicate, mode execution.Mode) ([]ranker.Document, error)
}

// ProcessQueries runs every query with the default predicate on a pool of
// workers and returns the results in query order. workers < 1 means
// GOMAXPROCS. If any query fails, the error of the first failing query in
// input order is returned.
func ProcessQueries(finder Finder, queries []string, workers int) ([][]ranker.Document, error) {
	results := make([][]ranker.Document, len(queries))
	if len(queries) == 0 {
		return results, nil
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	pool, err := ants.NewPool(min(workers, len(queries)))
	if err != nil {
		return nil, fmt.Errorf("creating query pool: %w", err)
	}
	defer pool.Release()

	errs := make([]error, len(queries))
	var wg sync.WaitGroup
	for i, raw := range queries {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = finder.FindTopDocuments(raw, nil, execution.Sequential)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submitting query %q: %w", raw, submitErr)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("query %d %q: %w", i, queries[i], err)
		}
	}
	return results, nil
}

// ProcessQueriesJoined is ProcessQueries with the per-query results
// concatenated in query order.
func ProcessQueriesJoined(finder Finder, queries []string, workers int) ([]ranker.Document, error) {
	results, err := ProcessQueries(finder, queries, workers)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range results {
		total += len(docs)
	}
	joined := make([]ranker.Document, 0, total)
	for _, docs := range results {
		joined = append(joined, docs...)
	}
	return joined, nil
}
