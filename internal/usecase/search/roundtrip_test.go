package search

import (
	"context"
	"sort"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/db"
	"github.com/lumeris-ai/searchfuse/internal/embedding"
	documentrepo "github.com/lumeris-ai/searchfuse/internal/repository/document"
	searchrepo "github.com/lumeris-ai/searchfuse/internal/repository/search"
	indexuc "github.com/lumeris-ai/searchfuse/internal/usecase/index"
)

// fakeStore keeps documents in memory and ranks by naive term matching, so
// an indexed document flows through the real repositories and services.
type fakeStore struct {
	docs []db.InsertDoc
}

func (f *fakeStore) Insert(_ context.Context, doc *db.InsertDoc) (string, error) {
	f.docs = append(f.docs, *doc)
	return doc.ID, nil
}

func (f *fakeStore) SearchBM25(_ context.Context, q *db.TextQuery) ([]db.Row, error) {
	var out []db.Row
	for _, d := range f.docs {
		text := strings.ToLower(d.Title + " " + d.Content)
		score := float64(strings.Count(text, strings.ToLower(q.Query)))
		if score > 0 {
			out = append(out, db.Row{
				ID: d.ID, Title: d.Title, Content: d.Content,
				Score: score, Metadata: d.Metadata,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) SearchVector(_ context.Context, q *db.VectorQuery) ([]db.Row, error) {
	var out []db.Row
	for _, d := range f.docs {
		if len(d.Vector) == 0 {
			continue
		}
		out = append(out, db.Row{
			ID: d.ID, Title: d.Title, Content: d.Content,
			Score: dot(d.Vector, q.Vector), Metadata: d.Metadata,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) SupportsVector(_ context.Context) bool { return true }

// dot is cosine similarity for unit vectors, which the local embedding
// generator produces.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func newRoundtripServices(t *testing.T) (*indexuc.Service, *Service) {
	t.Helper()
	logger := zap.NewNop()
	store := &fakeStore{}
	embedder := embedding.NewGenerator(embedding.Config{Dimensions: 64, Logger: logger})

	indexSvc := indexuc.New(documentrepo.New(store), embedder, logger).WithBatching(10, 0)
	searchSvc := New(searchrepo.New(store), embedder, logger)
	return indexSvc, searchSvc
}

func TestRoundtrip_IndexThenKeywordSearch(t *testing.T) {
	indexSvc, searchSvc := newRoundtripServices(t)
	ctx := context.Background()

	id, err := indexSvc.Index(ctx, "Zero-Copy Forks", "Forks allow copy-on-write database branching", nil)
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	results := searchSvc.SearchBM25(ctx, "copy-on-write", 5)
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].ID() != id {
		t.Errorf("id = %q, want %q", results[0].ID(), id)
	}
	if results[0].BM25Score() <= 0 {
		t.Errorf("bm25 score = %v, want > 0", results[0].BM25Score())
	}
}

func TestRoundtrip_IndexThenHybridSearch(t *testing.T) {
	indexSvc, searchSvc := newRoundtripServices(t)
	ctx := context.Background()

	id, err := indexSvc.Index(ctx, "Zero-Copy Forks", "Forks allow copy-on-write database branching", nil)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if _, err := indexSvc.Index(ctx, "Unrelated", "Completely different topic entirely", nil); err != nil {
		t.Fatalf("index: %v", err)
	}

	results := searchSvc.SearchHybrid(ctx, "copy-on-write", 3)
	if len(results) == 0 {
		t.Fatal("expected results")
	}

	found := false
	for _, r := range results {
		if r.ID() == id {
			found = true
			if r.HybridScore() <= 0 {
				t.Errorf("hybrid score = %v, want > 0", r.HybridScore())
			}
		}
	}
	if !found {
		t.Errorf("indexed document %q not in top %d", id, len(results))
	}
}
