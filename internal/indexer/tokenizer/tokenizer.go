// Package tokenizer splits document and query text into words and holds the
// stop-word set shared by indexing and query parsing.
package tokenizer

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

// SplitIntoWords breaks text on ASCII spaces, collapsing runs, and returns
// the non-empty words in their original order. Other whitespace is kept inside
// words so that control characters are caught by validation.
func SplitIntoWords(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	for word := range strings.SplitSeq(text, " ") {
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

// IsValidWord reports whether word is free of control characters.
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// StopWords is an immutable set of words excluded from indexing and queries.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a set from words, skipping empty strings. A word with a
// control character fails with ErrInvalidWord.
func NewStopWords(words []string) (StopWords, error) {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		if !IsValidWord(word) {
			return StopWords{}, fmt.Errorf("%w: stop word %q", apperrors.ErrInvalidWord, word)
		}
		set[word] = struct{}{}
	}
	return StopWords{words: set}, nil
}

// ParseStopWords builds a set from space-separated text.
func ParseStopWords(text string) (StopWords, error) {
	return NewStopWords(SplitIntoWords(text))
}

// Contains reports whether word is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s StopWords) Len() int {
	return len(s.words)
}

// Words returns the stop words in sorted order.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s.words))
	for word := range s.words {
		out = append(out, word)
	}
	slices.Sort(out)
	return out
}

// SplitIntoWordsNoStop splits text, validates every word, and drops stop
// words. No partial result is returned on error.
func (s StopWords) SplitIntoWordsNoStop(text string) ([]string, error) {
	words := SplitIntoWords(text)
	kept := words[:0]
	for _, word := range words {
		if !IsValidWord(word) {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidWord, word)
		}
		if !s.Contains(word) {
			kept = append(kept, word)
		}
	}
	return kept, nil
}
