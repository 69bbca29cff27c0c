package db

// Op constants name the store operation for error context.
const (
	OpSearchBM25   = "search_bm25"
	OpSearchVector = "search_vector"
	OpInsert       = "insert"
)

// Error wraps an underlying driver error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
