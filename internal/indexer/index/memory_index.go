package index

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

// postingList holds one term's postings. It has its own lock so a parallel
// removal can mutate it without holding the index-wide lock.
type postingList struct {
	mu   sync.RWMutex
	docs map[int]float64
}

// MemoryIndex keeps the forward map (document -> term frequencies) and the
// inverted map (term -> postings) in step, together with document metadata
// and the ascending set of live ids.
//
// mu guards the structural maps and is only held for short critical
// sections. Each postings list is additionally guarded by its own lock.
type MemoryIndex struct {
	mu        sync.RWMutex
	stopWords tokenizer.StopWords
	inverted  map[string]*postingList
	forward   map[int]map[string]float64
	documents map[int]DocumentData
	ids       *roaring64.Bitmap
	removing  map[int]struct{}
	workers   int
	logger    *slog.Logger
}

// NewMemoryIndex creates an empty index. workers bounds the fan-out of
// parallel removals; zero means GOMAXPROCS.
func NewMemoryIndex(stopWords tokenizer.StopWords, workers int) *MemoryIndex {
	return &MemoryIndex{
		stopWords: stopWords,
		inverted:  make(map[string]*postingList),
		forward:   make(map[int]map[string]float64),
		documents: make(map[int]DocumentData),
		ids:       roaring64.New(),
		removing:  make(map[int]struct{}),
		workers:   workers,
		logger:    slog.Default().With("component", "memory-index"),
	}
}

// AddDocument indexes text under docID. Every word is validated before the
// index is touched, so a failed call leaves it unchanged.
func (m *MemoryIndex) AddDocument(docID int, text string, status Status, ratings []int) error {
	if docID < 0 {
		return fmt.Errorf("%w: %d is negative", apperrors.ErrInvalidID, docID)
	}
	words, err := m.stopWords.SplitIntoWordsNoStop(text)
	if err != nil {
		return fmt.Errorf("indexing document %d: %w", docID, err)
	}

	counts := make(map[string]int, len(words))
	for _, word := range words {
		counts[word]++
	}
	freqs := make(map[string]float64, len(counts))
	total := float64(len(words))
	for word, n := range counts {
		freqs[word] = float64(n) / total
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.documents[docID]; exists {
		return fmt.Errorf("%w: %d already indexed", apperrors.ErrInvalidID, docID)
	}
	if _, pending := m.removing[docID]; pending {
		return fmt.Errorf("%w: %d is being removed", apperrors.ErrInvalidID, docID)
	}

	for term, freq := range freqs {
		pl, exists := m.inverted[term]
		if !exists {
			pl = &postingList{docs: make(map[int]float64)}
			m.inverted[term] = pl
		}
		pl.mu.Lock()
		pl.docs[docID] = freq
		pl.mu.Unlock()
	}
	m.forward[docID] = freqs
	m.documents[docID] = DocumentData{
		Rating: averageRating(ratings),
		Status: status,
	}
	m.ids.Add(uint64(docID))

	m.logger.Debug("document indexed",
		"doc_id", docID,
		"token_count", len(words),
		"terms", len(freqs),
	)
	return nil
}

// RemoveDocument erases docID from every structure. Removing an id that is
// not live is a no-op and reports false. In Parallel mode the postings of the
// document's terms are cleared concurrently, each under its own term lock.
func (m *MemoryIndex) RemoveDocument(mode execution.Mode, docID int) bool {
	m.mu.Lock()
	freqs, exists := m.forward[docID]
	if !exists {
		m.mu.Unlock()
		return false
	}
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	lists := make([]*postingList, len(terms))
	for i, term := range terms {
		lists[i] = m.inverted[term]
	}
	delete(m.documents, docID)
	delete(m.forward, docID)
	m.ids.Remove(uint64(docID))
	m.removing[docID] = struct{}{}
	m.mu.Unlock()

	execution.ForEach(mode, m.workers, len(lists), func(i int) {
		pl := lists[i]
		pl.mu.Lock()
		delete(pl.docs, docID)
		pl.mu.Unlock()
	})

	m.mu.Lock()
	for i, term := range terms {
		pl := lists[i]
		pl.mu.RLock()
		empty := len(pl.docs) == 0
		pl.mu.RUnlock()
		if empty && m.inverted[term] == pl {
			delete(m.inverted, term)
		}
	}
	delete(m.removing, docID)
	m.mu.Unlock()

	m.logger.Debug("document removed",
		"doc_id", docID,
		"mode", mode.String(),
		"terms", len(terms),
	)
	return true
}

// WordFrequencies returns a copy of the document's term frequencies, or an
// empty map when docID is not live.
func (m *MemoryIndex) WordFrequencies(docID int) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	freqs := m.forward[docID]
	out := make(map[string]float64, len(freqs))
	for term, f := range freqs {
		out[term] = f
	}
	return out
}

// Postings returns the term's postings ordered by document id, or nil when
// the term is not indexed.
func (m *MemoryIndex) Postings(term string) PostingList {
	m.mu.RLock()
	pl, exists := m.inverted[term]
	m.mu.RUnlock()
	if !exists {
		return nil
	}
	pl.mu.RLock()
	result := make(PostingList, 0, len(pl.docs))
	for docID, freq := range pl.docs {
		result = append(result, Posting{DocID: docID, Frequency: freq})
	}
	pl.mu.RUnlock()
	slices.SortFunc(result, func(a, b Posting) int {
		return a.DocID - b.DocID
	})
	return result
}

// Contains reports whether docID appears in term's postings.
func (m *MemoryIndex) Contains(term string, docID int) bool {
	m.mu.RLock()
	pl, exists := m.inverted[term]
	m.mu.RUnlock()
	if !exists {
		return false
	}
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	_, ok := pl.docs[docID]
	return ok
}

func (m *MemoryIndex) Document(docID int) (DocumentData, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.documents[docID]
	return data, ok
}

func (m *MemoryIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int(m.ids.GetCardinality())
}

// TermCount returns the number of distinct indexed terms.
func (m *MemoryIndex) TermCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inverted)
}

// IDs yields live document ids in ascending order. Each iteration works on
// a snapshot taken when it starts, so the sequence can be ranged over again.
func (m *MemoryIndex) IDs() iter.Seq[int] {
	return func(yield func(int) bool) {
		m.mu.RLock()
		ids := m.ids.ToArray()
		m.mu.RUnlock()
		for _, id := range ids {
			if !yield(int(id)) {
				return
			}
		}
	}
}

func (m *MemoryIndex) StopWords() tokenizer.StopWords {
	return m.stopWords
}

// averageRating is the truncated mean of ratings, or zero when empty.
func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
