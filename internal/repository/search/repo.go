// Package search maps store search rows into domain results.
package search

import (
	"context"
	"fmt"

	"github.com/lumeris-ai/searchfuse/internal/db"
	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) ([]db.Row, error)
	SearchVector(ctx context.Context, q *db.VectorQuery) ([]db.Row, error)
	SupportsVector(ctx context.Context) bool
}

// Repo implements the search usecase's Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SupportsVector proxies the capability probe from the store.
func (r *Repo) SupportsVector(ctx context.Context) bool {
	return r.store.SupportsVector(ctx)
}

// SearchBM25 runs a keyword-ranked query. Each hit carries its rank score as
// both BM25 and hybrid score.
func (r *Repo) SearchBM25(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	rows, err := r.store.SearchBM25(ctx, &db.TextQuery{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.NewBM25Result(row.ID, row.Title, row.Content, row.Score, row.Metadata))
	}
	return results, nil
}

// SearchVector runs a similarity-ranked query. Each hit carries its cosine
// similarity as both vector and hybrid score. Callers are expected to gate on
// SupportsVector first; the guard here keeps an ungated call from reaching
// the store as a malformed query.
func (r *Repo) SearchVector(ctx context.Context, vector []float32, limit int) ([]domain.SearchResult, error) {
	if !r.store.SupportsVector(ctx) {
		return nil, domain.ErrCapabilityUnavailable
	}
	rows, err := r.store.SearchVector(ctx, &db.VectorQuery{Vector: vector, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search vector: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.NewVectorResult(row.ID, row.Title, row.Content, row.Score, row.Metadata))
	}
	return results, nil
}
