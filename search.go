package searchfuse

import (
	"context"
	"fmt"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// Method selects the search strategy.
type Method string

// Search methods.
const (
	Hybrid Method = "hybrid"
	BM25   Method = "bm25"
	Vector Method = "vector"
)

// SearchResult is one ranked document.
type SearchResult struct {
	ID          string
	Title       string
	Content     string
	BM25Score   float64
	VectorScore float64
	HybridScore float64
	Metadata    map[string]string
}

// FallbackCorpus supplies results when the keyword path fails or comes back
// empty.
type FallbackCorpus func(query string, limit int) []SearchResult

// SearchOptions configures a search query.
type SearchOptions struct {
	Method   Method
	Limit    int
	MinScore float64
}

// Search executes a query. An unset method defaults to hybrid. Searches
// degrade rather than fail: when the vector leg is unavailable the result
// comes from keyword ranking alone.
func (c *Client) Search(
	ctx context.Context, query string, opts *SearchOptions,
) ([]SearchResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	m := domain.Method(opts.Method)
	if m == "" {
		m = domain.MethodHybrid
	}

	results, err := c.searchSvc.Search(ctx, query, m, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := fromSearchResults(results)
	if opts.MinScore > 0 {
		filtered := out[:0]
		for _, r := range out {
			if r.HybridScore >= opts.MinScore {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}
	return out, nil
}

func fromSearchResults(results []domain.SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = SearchResult{
			ID:          r.ID(),
			Title:       r.Title(),
			Content:     r.Content(),
			BM25Score:   r.BM25Score(),
			VectorScore: r.VectorScore(),
			HybridScore: r.HybridScore(),
			Metadata:    r.Metadata(),
		}
	}
	return out
}
