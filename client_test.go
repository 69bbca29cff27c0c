package searchfuse

import (
	"testing"
	"time"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

func TestNew_NoDSN(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no DSN provided")
	}
}

func TestOptions_Applied(t *testing.T) {
	cfg := &clientConfig{}
	opts := []Option{
		WithPostgres("postgres://localhost/searchfuse"),
		WithConnPool(20, 5),
		WithOpenAI("sk-test", "https://example.com/v1", "text-embedding-3-small"),
		WithDimensions(768),
		WithCache(50, time.Minute),
		WithRateLimit(100),
		WithBatching(5, 50*time.Millisecond),
		WithCandidateCap(42),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn != "postgres://localhost/searchfuse" {
		t.Errorf("dsn = %q", cfg.dsn)
	}
	if cfg.maxOpenConns != 20 || cfg.maxIdleConns != 5 {
		t.Errorf("conn pool = %d/%d, want 20/5", cfg.maxOpenConns, cfg.maxIdleConns)
	}
	if cfg.apiKey != "sk-test" || cfg.model != "text-embedding-3-small" {
		t.Errorf("provider = %q/%q", cfg.apiKey, cfg.model)
	}
	if cfg.dimensions != 768 {
		t.Errorf("dimensions = %d, want 768", cfg.dimensions)
	}
	if cfg.cacheCapacity != 50 || cfg.cacheTTL != time.Minute {
		t.Errorf("cache = %d/%v", cfg.cacheCapacity, cfg.cacheTTL)
	}
	if cfg.rateLimit != 100 {
		t.Errorf("rate limit = %d, want 100", cfg.rateLimit)
	}
	if cfg.batchSize != 5 || cfg.batchPause != 50*time.Millisecond {
		t.Errorf("batching = %d/%v", cfg.batchSize, cfg.batchPause)
	}
	if cfg.candidateCap != 42 {
		t.Errorf("candidate cap = %d, want 42", cfg.candidateCap)
	}
}

func TestToInternalFallback(t *testing.T) {
	fc := FallbackCorpus(func(query string, limit int) []SearchResult {
		return []SearchResult{
			{ID: "doc-1", Title: "T", Content: "C", BM25Score: 0.5},
		}
	})

	internal := toInternalFallback(fc)
	results := internal("q", 10)

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].ID() != "doc-1" {
		t.Errorf("id = %q, want doc-1", results[0].ID())
	}
	if results[0].BM25Score() != 0.5 {
		t.Errorf("bm25 score = %v, want 0.5", results[0].BM25Score())
	}
}

func TestFromSearchResults(t *testing.T) {
	in := []domain.SearchResult{
		domain.NewFusedResult("doc-1", "T", "C", 0.1, 0.2, 0.3, map[string]string{"k": "v"}),
	}
	out := fromSearchResults(in)

	if len(out) != 1 {
		t.Fatalf("results = %d, want 1", len(out))
	}
	r := out[0]
	if r.ID != "doc-1" || r.BM25Score != 0.1 || r.VectorScore != 0.2 || r.HybridScore != 0.3 {
		t.Errorf("unexpected mapping: %+v", r)
	}
	if r.Metadata["k"] != "v" {
		t.Errorf("metadata = %v", r.Metadata)
	}
}
