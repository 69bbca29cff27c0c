package index

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	mu      sync.Mutex
	inserts []*domain.Document
	err     error
	failOn  string // title that triggers err
}

func (m *mockRepo) Insert(_ context.Context, doc *domain.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil && (m.failOn == "" || m.failOn == doc.Title()) {
		return "", m.err
	}
	m.inserts = append(m.inserts, doc)
	return doc.ID(), nil
}

type mockEmbedder struct {
	mu       sync.Mutex
	calls    int
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastText = text
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func newService(repo *mockRepo, embed *mockEmbedder) *Service {
	return New(repo, embed, zap.NewNop()).WithBatching(2, 0)
}

// --- Tests ---

func TestIndex_EmbedsTitleAndContent(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{}
	svc := newService(repo, embed)

	id, err := svc.Index(context.Background(), "Zero-Copy Forks",
		"Forks allow copy-on-write database branching", nil)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	want := "Zero-Copy Forks\n\nForks allow copy-on-write database branching"
	if embed.lastText != want {
		t.Errorf("expected embedding context %q, got %q", want, embed.lastText)
	}
	if len(repo.inserts) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserts))
	}
	if len(repo.inserts[0].Vector()) != 2 {
		t.Errorf("expected vector attached before insert")
	}
}

func TestIndex_ValidationErrors(t *testing.T) {
	svc := newService(&mockRepo{}, &mockEmbedder{})

	if _, err := svc.Index(context.Background(), "", "content", nil); !errors.Is(err, domain.ErrDocumentInvalid) {
		t.Errorf("expected ErrDocumentInvalid for missing title, got %v", err)
	}
	if _, err := svc.Index(context.Background(), "title", "", nil); !errors.Is(err, domain.ErrDocumentInvalid) {
		t.Errorf("expected ErrDocumentInvalid for missing content, got %v", err)
	}
}

func TestIndex_WriteFailurePropagates(t *testing.T) {
	writeErr := domain.ErrStoreWrite
	svc := newService(&mockRepo{err: writeErr}, &mockEmbedder{})

	_, err := svc.Index(context.Background(), "title", "content", nil)
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected write error propagated, got %v", err)
	}
}

func TestBatchIndex_AllSucceed(t *testing.T) {
	repo := &mockRepo{}
	svc := newService(repo, &mockEmbedder{})

	items := []Request{
		{Title: "one", Content: "first"},
		{Title: "two", Content: "second"},
		{Title: "three", Content: "third"},
	}
	results := svc.BatchIndex(context.Background(), items)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Status() != domain.BatchStatusOK {
			t.Errorf("item %d: expected ok, got %s (%v)", i, r.Status(), r.Err())
		}
		if r.ID() == "" {
			t.Errorf("item %d: expected generated id", i)
		}
	}
	if len(repo.inserts) != 3 {
		t.Errorf("expected 3 inserts, got %d", len(repo.inserts))
	}
}

func TestBatchIndex_FailureDoesNotAbortBatch(t *testing.T) {
	repo := &mockRepo{err: errors.New("disk full"), failOn: "bad"}
	svc := newService(repo, &mockEmbedder{})

	items := []Request{
		{Title: "good", Content: "fine"},
		{Title: "bad", Content: "broken"},
		{Title: "also good", Content: "fine too"},
	}
	results := svc.BatchIndex(context.Background(), items)

	if results[0].Status() != domain.BatchStatusOK {
		t.Errorf("item 0: expected ok, got %v", results[0].Err())
	}
	if results[1].Status() != domain.BatchStatusError {
		t.Error("item 1: expected recorded error")
	}
	if results[1].Err() == nil || !strings.Contains(results[1].Err().Error(), "disk full") {
		t.Errorf("item 1: expected underlying error, got %v", results[1].Err())
	}
	if results[2].Status() != domain.BatchStatusOK {
		t.Errorf("item 2: expected ok, got %v", results[2].Err())
	}
}

func TestBatchIndex_PausesBetweenBatches(t *testing.T) {
	repo := &mockRepo{}
	pause := 60 * time.Millisecond
	svc := New(repo, &mockEmbedder{}, zap.NewNop()).WithBatching(1, pause)

	items := []Request{
		{Title: "one", Content: "a"},
		{Title: "two", Content: "b"},
		{Title: "three", Content: "c"},
	}

	start := time.Now()
	svc.BatchIndex(context.Background(), items)
	elapsed := time.Since(start)

	// Two inter-batch pauses for three single-item batches.
	if elapsed < 2*pause {
		t.Errorf("expected at least %v of inter-batch pause, took %v", 2*pause, elapsed)
	}
}

func TestBatchIndex_ContextCancellation(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{}, zap.NewNop()).WithBatching(1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	items := []Request{
		{Title: "one", Content: "a"},
		{Title: "two", Content: "b"},
	}
	results := svc.BatchIndex(ctx, items)

	if results[0].Status() != domain.BatchStatusOK {
		t.Errorf("first item should finish before cancellation, got %v", results[0].Err())
	}
	if results[1].Status() != domain.BatchStatusError {
		t.Error("expected remaining item marked failed after cancellation")
	}
}

func TestBatchIndex_Empty(t *testing.T) {
	svc := newService(&mockRepo{}, &mockEmbedder{})
	if results := svc.BatchIndex(context.Background(), nil); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
