package domain

// BatchItemStatus is the processing outcome of a single batch item.
type BatchItemStatus string

// Batch item status values.
const (
	BatchStatusOK    BatchItemStatus = "ok"
	BatchStatusError BatchItemStatus = "error"
)

// BatchResult is the outcome of indexing one item in a batch. A failed item
// never aborts its batch; the error is recorded here instead.
type BatchResult struct {
	id     string
	status BatchItemStatus
	err    error
}

// NewBatchOK creates a successful batch result.
func NewBatchOK(id string) BatchResult { return BatchResult{id: id, status: BatchStatusOK} }

// NewBatchError creates a failed batch result.
func NewBatchError(id string, err error) BatchResult {
	return BatchResult{id: id, status: BatchStatusError, err: err}
}

// ID returns the item identifier (empty when the item never got one).
func (r BatchResult) ID() string { return r.id }

// Status returns the processing outcome.
func (r BatchResult) Status() BatchItemStatus { return r.status }

// Err returns the error, if any.
func (r BatchResult) Err() error { return r.err }
