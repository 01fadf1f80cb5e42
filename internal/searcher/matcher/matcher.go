// Package matcher reports which query terms a single document contains.
package matcher

import (
	"fmt"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

type Source interface {
	Document(docID int) (index.DocumentData, bool)
	Contains(term string, docID int) bool
}

type Matcher struct {
	src     Source
	workers int
}

func New(src Source, workers int) *Matcher {
	return &Matcher{src: src, workers: workers}
}

// Match returns the sorted plus terms found in docID together with its
// status. If the document contains any minus term the term list is empty.
func (m *Matcher) Match(mode execution.Mode, q *parser.Query, docID int) ([]string, index.Status, error) {
	data, ok := m.src.Document(docID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", apperrors.ErrUnknownDocument, docID)
	}

	if mode == execution.Parallel {
		var excluded atomic.Bool
		execution.ForEach(mode, m.workers, len(q.MinusTerms), func(i int) {
			if !excluded.Load() && m.src.Contains(q.MinusTerms[i], docID) {
				excluded.Store(true)
			}
		})
		if excluded.Load() {
			return []string{}, data.Status, nil
		}
		hits := make([]bool, len(q.PlusTerms))
		execution.ForEach(mode, m.workers, len(q.PlusTerms), func(i int) {
			hits[i] = m.src.Contains(q.PlusTerms[i], docID)
		})
		matched := make([]string, 0, len(q.PlusTerms))
		for i, hit := range hits {
			if hit {
				matched = append(matched, q.PlusTerms[i])
			}
		}
		return matched, data.Status, nil
	}

	for _, term := range q.MinusTerms {
		if m.src.Contains(term, docID) {
			return []string{}, data.Status, nil
		}
	}
	matched := make([]string, 0, len(q.PlusTerms))
	for _, term := range q.PlusTerms {
		if m.src.Contains(term, docID) {
			matched = append(matched, term)
		}
	}
	return matched, data.Status, nil
}
