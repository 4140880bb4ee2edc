package search

import (
	"context"
	"sort"
)

// Defaults from §4.8: vector/full-text candidate depth per stage, final
// result limit.
const (
	DefaultStageDepth = 20
	DefaultLimit      = 10

	vectorWeight   = 0.7
	fulltextWeight = 0.3
)

// Result is one hybrid-search hit with its component and combined scores.
type Result struct {
	ID             string
	VectorScore    float64
	FulltextScore  float64
	CombinedScore  float64
}

// Filter restricts a Hybrid search by catalog-level predicates (§4.8).
// Include returns whether the document id (already matched) should be
// kept; callers for whom filters have no meaning can pass nil.
type Filter func(id string) bool

// Hybrid runs the vector and full-text stages (top stageDepth each),
// unions their hits by document id taking the max of each component
// score per §4.8 ("group by document id with max of each component"),
// computes combined_score = 0.7*vector + 0.3*fulltext, applies filter,
// sorts descending by combined score, and returns at most limit results.
func Hybrid(ctx context.Context, vecIdx VectorIndex, textIdx TextIndex, queryVec []float64, queryText string, stageDepth, limit int, filter Filter) ([]Result, error) {
	if stageDepth <= 0 {
		stageDepth = DefaultStageDepth
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	byID := make(map[string]*Result)

	if vecIdx != nil {
		vecHits, err := vecIdx.TopK(ctx, queryVec, stageDepth)
		if err != nil {
			return nil, err
		}
		for _, h := range vecHits {
			r := getOrCreate(byID, h.ID)
			if h.Score > r.VectorScore {
				r.VectorScore = h.Score
			}
		}
	}

	if textIdx != nil {
		textHits, err := textIdx.TopK(ctx, queryText, stageDepth)
		if err != nil {
			return nil, err
		}
		for _, h := range textHits {
			r := getOrCreate(byID, h.ID)
			if h.Score > r.FulltextScore {
				r.FulltextScore = h.Score
			}
		}
	}

	out := make([]Result, 0, len(byID))
	for _, r := range byID {
		if filter != nil && !filter(r.ID) {
			continue
		}
		r.CombinedScore = vectorWeight*r.VectorScore + fulltextWeight*r.FulltextScore
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CombinedScore > out[j].CombinedScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func getOrCreate(m map[string]*Result, id string) *Result {
	r, ok := m[id]
	if !ok {
		r = &Result{ID: id}
		m[id] = r
	}
	return r
}
