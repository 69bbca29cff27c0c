package db

import (
	"context"
	"time"
)

// TextQuery is the input for a keyword-ranked search.
type TextQuery struct {
	Query string
	Limit int
}

// VectorQuery is the input for a similarity-ranked search.
type VectorQuery struct {
	Vector []float32
	Limit  int
}

// Row is a single document row returned by a search, with the backend's rank
// score attached.
type Row struct {
	ID       string
	Title    string
	Content  string
	Score    float64
	Metadata map[string]string
}

// InsertDoc is the input for a document insert. Vector may be nil when the
// backend has no vector column.
type InsertDoc struct {
	ID       string
	Title    string
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// Store is the document store contract consumed by the repositories.
type Store interface {
	SearchBM25(ctx context.Context, q *TextQuery) ([]Row, error)
	SearchVector(ctx context.Context, q *VectorQuery) ([]Row, error)
	Insert(ctx context.Context, doc *InsertDoc) (string, error)
	// SupportsVector reports whether the backend can run similarity queries.
	// The probe result is cached for the life of the process.
	SupportsVector(ctx context.Context) bool
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close() error
}
