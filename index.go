package searchfuse

import (
	"context"
	"fmt"

	indexuc "github.com/lumeris-ai/searchfuse/internal/usecase/index"
)

// Document is one item to index.
type Document struct {
	Title    string
	Content  string
	Metadata map[string]string
}

// BatchResult is the per-item outcome of a bulk index call.
type BatchResult struct {
	ID  string
	Err error
}

// Index embeds and persists a single document, returning its generated id.
// Unlike searches, write failures propagate to the caller.
func (c *Client) Index(ctx context.Context, doc Document) (string, error) {
	id, err := c.indexSvc.Index(ctx, doc.Title, doc.Content, doc.Metadata)
	if err != nil {
		return "", fmt.Errorf("index: %w", err)
	}
	return id, nil
}

// BatchIndex processes documents in batches with a pause between batches.
// A failed document is reported in its slot and never aborts the rest.
func (c *Client) BatchIndex(ctx context.Context, docs []Document) []BatchResult {
	items := make([]indexuc.Request, len(docs))
	for i, d := range docs {
		items[i] = indexuc.Request{Title: d.Title, Content: d.Content, Metadata: d.Metadata}
	}

	results := c.indexSvc.BatchIndex(ctx, items)

	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{ID: r.ID(), Err: r.Err()}
	}
	return out
}

// SupportsVector reports whether the store can serve vector similarity
// queries. When false, hybrid and vector searches fall back to keyword
// ranking.
func (c *Client) SupportsVector(ctx context.Context) bool {
	return c.store.SupportsVector(ctx)
}
