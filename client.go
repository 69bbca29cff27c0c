// Package searchfuse is an embeddable hybrid search engine: BM25 keyword
// ranking and vector similarity over PostgreSQL, fused with reciprocal rank
// fusion, with a cached and rate-limited embedding pipeline in front.
package searchfuse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/db/postgres"
	"github.com/lumeris-ai/searchfuse/internal/domain"
	"github.com/lumeris-ai/searchfuse/internal/embcache"
	"github.com/lumeris-ai/searchfuse/internal/embedding"
	"github.com/lumeris-ai/searchfuse/internal/ratelimit"
	documentrepo "github.com/lumeris-ai/searchfuse/internal/repository/document"
	searchrepo "github.com/lumeris-ai/searchfuse/internal/repository/search"
	openaiEmb "github.com/lumeris-ai/searchfuse/internal/transport/openai"
	indexuc "github.com/lumeris-ai/searchfuse/internal/usecase/index"
	searchuc "github.com/lumeris-ai/searchfuse/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the searchfuse SDK entry point.
type Client struct {
	store     *postgres.Store
	embedder  *embedding.Generator
	cache     *embcache.Cache
	searchSvc *searchuc.Service
	indexSvc  *indexuc.Service
}

// New creates a searchfuse Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimensions:    domain.DefaultDimensions,
		cacheCapacity: embcache.DefaultCapacity,
		cacheTTL:      embcache.DefaultTTL,
		rateLimit:     ratelimit.DefaultMaxPerWindow,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if cfg.dsn == "" {
		return nil, errors.New("searchfuse: database DSN required (use WithPostgres)")
	}

	store, err := postgres.NewStore(postgres.Config{
		DSN:          cfg.dsn,
		MaxOpenConns: cfg.maxOpenConns,
		MaxIdleConns: cfg.maxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("searchfuse: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchfuse: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *postgres.Store, cfg *clientConfig) *Client {
	cache := embcache.New(cfg.cacheCapacity, cfg.cacheTTL, nil)
	limiter := ratelimit.New(cfg.rateLimit, ratelimit.DefaultWindow)

	var provider domain.Embedder
	if cfg.apiKey != "" {
		provider = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.model,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
	}

	embedder := embedding.NewGenerator(embedding.Config{
		Cache:         cache,
		Limiter:       limiter,
		Provider:      provider,
		Dimensions:    cfg.dimensions,
		MaxInputChars: cfg.maxInputChars,
		Timeout:       cfg.timeout,
		Logger:        cfg.logger,
	})

	searchSvc := searchuc.New(searchrepo.New(store), embedder, cfg.logger)
	if cfg.candidateCap > 0 {
		searchSvc = searchSvc.WithCandidateCap(cfg.candidateCap)
	}
	if cfg.fallback != nil {
		searchSvc = searchSvc.WithFallbackCorpus(toInternalFallback(cfg.fallback))
	}

	indexSvc := indexuc.New(documentrepo.New(store), embedder, cfg.logger)
	if cfg.batchSize > 0 || cfg.batchPause > 0 {
		indexSvc = indexSvc.WithBatching(cfg.batchSize, cfg.batchPause)
	}

	return &Client{
		store:     store,
		embedder:  embedder,
		cache:     cache,
		searchSvc: searchSvc,
		indexSvc:  indexSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Embed vectorizes text through the cache, rate-limited provider, and local
// fallback chain. Fails only on empty input.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	r, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return r.Embedding, nil
}

// CacheStats reports embedding cache size and hit counters.
func (c *Client) CacheStats() embcache.Stats {
	return c.cache.Stats()
}

func toInternalFallback(fc FallbackCorpus) searchuc.FallbackCorpus {
	return func(query string, limit int) []domain.SearchResult {
		pub := fc(query, limit)
		out := make([]domain.SearchResult, len(pub))
		for i, r := range pub {
			out[i] = domain.NewBM25Result(r.ID, r.Title, r.Content, r.BM25Score, r.Metadata)
		}
		return out
	}
}
