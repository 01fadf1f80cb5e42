// Package dedup removes documents whose vocabulary repeats an earlier one.
package dedup

import (
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
)

// Index is the part of the search server the detector needs.
type Index interface {
	IDs() iter.Seq[int]
	GetWordFrequencies(docID int) map[string]float64
	RemoveDocument(docID int, mode execution.Mode)
}

// FindDuplicates walks live ids in ascending order and returns every id
// whose set of terms equals that of a lower id. Frequencies are ignored.
func FindDuplicates(idx Index) []int {
	seen := make(map[string]struct{})
	var duplicates []int
	for id := range idx.IDs() {
		key := vocabularyKey(idx.GetWordFrequencies(id))
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, id)
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// RemoveDuplicates removes the ids FindDuplicates reports and returns them.
func RemoveDuplicates(idx Index, logger *slog.Logger) []int {
	if logger == nil {
		logger = slog.Default().With("component", "dedup")
	}
	duplicates := FindDuplicates(idx)
	for _, id := range duplicates {
		logger.Info("found duplicate document", "doc_id", id)
		idx.RemoveDocument(id, execution.Sequential)
	}
	return duplicates
}

func vocabularyKey(freqs map[string]float64) string {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	// terms never contain control characters
	return strings.Join(terms, "\x00")
}
