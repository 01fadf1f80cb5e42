package parser

import (
	"fmt"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

// Query is a parsed query. PlusTerms and MinusTerms are sorted and free of
// duplicates. A Query is never modified after Parse returns it.
type Query struct {
	PlusTerms  []string
	MinusTerms []string
	RawQuery   string
}

func (q *Query) Empty() bool {
	return len(q.PlusTerms) == 0 && len(q.MinusTerms) == 0
}

// Parse splits text into words and sorts them into plus and minus terms. A
// word starting with '-' is a minus term. Stop words are dropped from both.
func Parse(text string, stopWords tokenizer.StopWords) (*Query, error) {
	plan := &Query{
		PlusTerms:  make([]string, 0),
		MinusTerms: make([]string, 0),
		RawQuery:   text,
	}
	for _, word := range tokenizer.SplitIntoWords(text) {
		term, minus, err := parseWord(word)
		if err != nil {
			return nil, err
		}
		if stopWords.Contains(term) {
			continue
		}
		if minus {
			plan.MinusTerms = append(plan.MinusTerms, term)
		} else {
			plan.PlusTerms = append(plan.PlusTerms, term)
		}
	}
	plan.PlusTerms = sortUnique(plan.PlusTerms)
	plan.MinusTerms = sortUnique(plan.MinusTerms)
	return plan, nil
}

func parseWord(word string) (term string, minus bool, err error) {
	term = word
	if term[0] == '-' {
		minus = true
		term = term[1:]
	}
	if term == "" || term[0] == '-' || !tokenizer.IsValidWord(term) {
		return "", false, fmt.Errorf("%w: %q", apperrors.ErrInvalidQueryWord, word)
	}
	return term, minus, nil
}

func sortUnique(terms []string) []string {
	slices.Sort(terms)
	return slices.Compact(terms)
}
