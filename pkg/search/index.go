package search

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// ScoredDoc is one index hit: a document id and that index's raw,
// un-normalized score (§4.8: "both already raw scores from their
// indexes, not normalized").
type ScoredDoc struct {
	ID    string
	Score float64
}

// VectorIndex returns the top-K nearest documents to a query embedding.
type VectorIndex interface {
	TopK(ctx context.Context, query []float64, k int) ([]ScoredDoc, error)
	Upsert(id string, vector []float64)
	Delete(id string)
}

// TextIndex returns the top-K documents by full-text relevance to a query
// string.
type TextIndex interface {
	TopK(ctx context.Context, query string, k int) ([]ScoredDoc, error)
	Upsert(id string, text string)
	Delete(id string)
}

// MemoryVectorIndex is a brute-force cosine-similarity VectorIndex,
// adequate at the catalog sizes a single-process deployment holds (§1
// non-goals explicitly exclude distributed deployment, so there is no
// requirement for a sharded ANN index here).
type MemoryVectorIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float64
}

// NewMemoryVectorIndex returns an empty MemoryVectorIndex.
func NewMemoryVectorIndex() *MemoryVectorIndex {
	return &MemoryVectorIndex{vectors: make(map[string][]float64)}
}

func (idx *MemoryVectorIndex) Upsert(id string, vector []float64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors[id] = vector
}

func (idx *MemoryVectorIndex) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.vectors, id)
}

func (idx *MemoryVectorIndex) TopK(_ context.Context, query []float64, k int) ([]ScoredDoc, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]ScoredDoc, 0, len(idx.vectors))
	for id, vec := range idx.vectors {
		hits = append(hits, ScoredDoc{ID: id, Score: cosineSimilarity(query, vec)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MemoryTextIndex is a term-overlap TextIndex: documents and queries are
// tokenized on whitespace/punctuation, lowercased, and scored by the
// fraction of query terms present in the document. No example repo in the
// retrieval pack exercises a runnable full-text library against real
// calling code (olivere/elastic appears only as an indirect entry in a
// go.mod-only manifest with no source), so this stays a small stdlib
// scorer rather than an unverified client integration — see DESIGN.md.
type MemoryTextIndex struct {
	mu    sync.RWMutex
	texts map[string]string
}

// NewMemoryTextIndex returns an empty MemoryTextIndex.
func NewMemoryTextIndex() *MemoryTextIndex {
	return &MemoryTextIndex{texts: make(map[string]string)}
}

func (idx *MemoryTextIndex) Upsert(id string, text string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.texts[id] = text
}

func (idx *MemoryTextIndex) Delete(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.texts, id)
}

func (idx *MemoryTextIndex) TopK(_ context.Context, query string, k int) ([]ScoredDoc, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}
	hits := make([]ScoredDoc, 0, len(idx.texts))
	for id, text := range idx.texts {
		docTerms := tokenSet(tokenize(text))
		matched := 0
		for _, qt := range queryTerms {
			if docTerms[qt] {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, ScoredDoc{ID: id, Score: float64(matched) / float64(len(queryTerms))})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
