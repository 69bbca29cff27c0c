package index

import (
	"context"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// Repository defines the storage contract for document writes.
type Repository interface {
	Insert(ctx context.Context, doc *domain.Document) (string, error)
}

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Request is one document to index.
type Request struct {
	Title    string
	Content  string
	Metadata map[string]string
}
