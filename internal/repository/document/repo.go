// Package document persists documents into the store.
package document

import (
	"context"
	"fmt"

	"github.com/lumeris-ai/searchfuse/internal/db"
	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// store is the consumer interface for document writes (ISP).
type store interface {
	Insert(ctx context.Context, doc *db.InsertDoc) (string, error)
}

// Repo implements the index usecase's Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert persists a new document and returns its id. There is no safe
// fallback for a write, so failures surface as ErrStoreWrite.
func (r *Repo) Insert(ctx context.Context, doc *domain.Document) (string, error) {
	id, err := r.store.Insert(ctx, &db.InsertDoc{
		ID:       doc.ID(),
		Title:    doc.Title(),
		Content:  doc.Content(),
		Vector:   doc.Vector(),
		Metadata: doc.Metadata(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	return id, nil
}
