package search

import (
	"context"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchBM25(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	SearchVector(ctx context.Context, vector []float32, limit int) ([]domain.SearchResult, error)
	SupportsVector(ctx context.Context) bool
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// FallbackCorpus supplies results when the keyword path fails or comes back
// empty. Product policy, injected rather than hardwired; nil means empty
// results.
type FallbackCorpus func(query string, limit int) []domain.SearchResult
