package search

import (
	"sort"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack
// et al. 2009). It dampens the influence of very high individual ranks.
const rrfK = 60

// fuseRRF merges keyword and vector rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) over the rankings where d appears,
// with 1-based ranks. Ties break on document id ascending so repeated
// queries return a stable order.
func fuseRRF(bm25, vector []domain.SearchResult, limit int) []domain.SearchResult {
	type scored struct {
		bm25   *domain.SearchResult
		vector *domain.SearchResult
		score  float64
	}

	merged := make(map[string]*scored)

	for rank := range bm25 {
		r := &bm25[rank]
		merged[r.ID()] = &scored{bm25: r, score: 1.0 / float64(rrfK+rank+1)}
	}

	for rank := range vector {
		r := &vector[rank]
		s := 1.0 / float64(rrfK+rank+1)
		if existing, ok := merged[r.ID()]; ok {
			existing.vector = r
			existing.score += s
		} else {
			merged[r.ID()] = &scored{vector: r, score: s}
		}
	}

	results := make([]domain.SearchResult, 0, len(merged))
	for _, s := range merged {
		base := s.bm25
		if base == nil {
			base = s.vector
		}
		var bm25Score, vectorScore float64
		if s.bm25 != nil {
			bm25Score = s.bm25.BM25Score()
		}
		if s.vector != nil {
			vectorScore = s.vector.VectorScore()
		}
		results = append(results, domain.NewFusedResult(
			base.ID(), base.Title(), base.Content(),
			bm25Score, vectorScore, s.score, base.Metadata(),
		))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].HybridScore() != results[j].HybridScore() {
			return results[i].HybridScore() > results[j].HybridScore()
		}
		return results[i].ID() < results[j].ID()
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results
}
