package domain

import (
	"fmt"
	"time"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is a stored, searchable text document.
// The vector is nil when the store was built without vector support.
type Document struct {
	id        string
	title     string
	content   string
	vector    []float32
	metadata  map[string]string
	createdAt time.Time
	updatedAt time.Time
}

// NewDocument validates and creates a Document ready for indexing.
// Timestamps are assigned by the store on insert.
func NewDocument(id, title, content string, metadata map[string]string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document ID is required", ErrDocumentInvalid)
	}
	if title == "" {
		return Document{}, fmt.Errorf("%w: title is required", ErrDocumentInvalid)
	}
	if content == "" {
		return Document{}, fmt.Errorf("%w: content is required", ErrDocumentInvalid)
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("%w: content too large (max %d bytes)", ErrDocumentInvalid, MaxContentSize)
	}
	return Document{
		id:       id,
		title:    title,
		content:  content,
		metadata: cloneStringMap(metadata),
	}, nil
}

// ReconstructDocument creates a Document without validation (storage hydration).
func ReconstructDocument(
	id, title, content string, vector []float32, metadata map[string]string,
	createdAt, updatedAt time.Time,
) Document {
	return Document{
		id: id, title: title, content: content, vector: vector,
		metadata: metadata, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the document body text.
func (d *Document) Content() string { return d.content }

// Vector returns the embedding vector, or nil.
func (d *Document) Vector() []float32 { return d.vector }

// Metadata returns the free-form metadata fields.
func (d *Document) Metadata() map[string]string { return d.metadata }

// CreatedAt returns the store-assigned creation time.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the store-assigned update time.
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

// SetVector sets the embedding vector in place.
func (d *Document) SetVector(v []float32) { d.vector = v }

// EmbeddingText returns the text embedded for this document.
func (d *Document) EmbeddingText() string {
	return d.title + "\n\n" + d.content
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
