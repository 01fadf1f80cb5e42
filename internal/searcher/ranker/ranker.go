package ranker

import (
	"cmp"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/shardmap"
)

const (
	MaxResults = 5
	// Epsilon is the relevance difference below which two documents are
	// ranked as equal and ordered by rating instead.
	Epsilon = 1e-6
	// DefaultShards is the accumulator shard count used for parallel ranking.
	DefaultShards = 150
)

type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Predicate decides whether a candidate document may be scored.
type Predicate func(docID int, status index.Status, rating int) bool

// ByStatus accepts only documents with the given status.
func ByStatus(status index.Status) Predicate {
	return func(_ int, s index.Status, _ int) bool {
		return s == status
	}
}

// Source is the read side of the index that ranking needs.
type Source interface {
	DocCount() int
	Postings(term string) index.PostingList
	Document(docID int) (index.DocumentData, bool)
}

type Ranker struct {
	src     Source
	shards  int
	workers int
}

// New creates a Ranker. shards sizes the accumulator used in Parallel mode
// and workers bounds its fan-out.
func New(src Source, shards, workers int) *Ranker {
	if shards <= 0 {
		shards = DefaultShards
	}
	return &Ranker{src: src, shards: shards, workers: workers}
}

// Rank scores every document matching a plus term and none of the minus
// terms by TF-IDF and returns the best MaxResults.
func (r *Ranker) Rank(mode execution.Mode, q *parser.Query, pred Predicate) []Document {
	var scores []shardmap.Entry[int, float64]
	if mode == execution.Parallel {
		scores = r.accumulateParallel(q, pred)
	} else {
		scores = r.accumulateSequential(q, pred)
	}

	result := make([]Document, 0, len(scores))
	for _, s := range scores {
		data, ok := r.src.Document(s.Key)
		if !ok {
			continue
		}
		result = append(result, Document{
			ID:        s.Key,
			Relevance: s.Value,
			Rating:    data.Rating,
		})
	}
	Sort(result)
	if len(result) > MaxResults {
		result = result[:MaxResults]
	}
	return result
}

func (r *Ranker) accumulateSequential(q *parser.Query, pred Predicate) []shardmap.Entry[int, float64] {
	scores := make(map[int]float64)
	total := r.src.DocCount()
	for _, term := range q.PlusTerms {
		postings := r.src.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := inverseDocumentFrequency(total, len(postings))
		for _, p := range postings {
			if r.accepts(pred, p.DocID) {
				scores[p.DocID] += p.Frequency * idf
			}
		}
	}
	for _, term := range q.MinusTerms {
		for _, p := range r.src.Postings(term) {
			delete(scores, p.DocID)
		}
	}

	out := make([]shardmap.Entry[int, float64], 0, len(scores))
	for docID, score := range scores {
		out = append(out, shardmap.Entry[int, float64]{Key: docID, Value: score})
	}
	slices.SortFunc(out, func(a, b shardmap.Entry[int, float64]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func (r *Ranker) accumulateParallel(q *parser.Query, pred Predicate) []shardmap.Entry[int, float64] {
	scores := shardmap.New[int, float64](r.shards)
	total := r.src.DocCount()
	execution.ForEach(execution.Parallel, r.workers, len(q.PlusTerms), func(i int) {
		postings := r.src.Postings(q.PlusTerms[i])
		if len(postings) == 0 {
			return
		}
		idf := inverseDocumentFrequency(total, len(postings))
		for _, p := range postings {
			if r.accepts(pred, p.DocID) {
				contribution := p.Frequency * idf
				scores.Update(p.DocID, func(v *float64) { *v += contribution })
			}
		}
	})
	execution.ForEach(execution.Parallel, r.workers, len(q.MinusTerms), func(i int) {
		for _, p := range r.src.Postings(q.MinusTerms[i]) {
			scores.Erase(p.DocID)
		}
	})
	return scores.Snapshot()
}

func (r *Ranker) accepts(pred Predicate, docID int) bool {
	data, ok := r.src.Document(docID)
	if !ok {
		return false
	}
	return pred(docID, data.Status, data.Rating)
}

func inverseDocumentFrequency(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Sort orders documents by relevance, descending. Relevances closer than
// Epsilon are ranked by rating, descending. Equal documents keep their
// relative order.
func Sort(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		if math.Abs(a.Relevance-b.Relevance) < Epsilon {
			return cmp.Compare(b.Rating, a.Rating)
		}
		return cmp.Compare(b.Relevance, a.Relevance)
	})
}
