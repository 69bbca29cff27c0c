// Package embedding produces fixed-dimension vectors for text through a
// cache, a rate-limited remote provider, and a deterministic local fallback,
// in that order. For non-empty input it never fails the caller.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/domain"
	"github.com/lumeris-ai/searchfuse/internal/embcache"
)

// DefaultMaxInputChars approximates the provider's token budget; longer text
// is truncated before the remote call.
const DefaultMaxInputChars = 8000

// DefaultProviderTimeout bounds a single remote embedding call.
const DefaultProviderTimeout = 30 * time.Second

// RateLimiter admits outbound provider calls.
type RateLimiter interface {
	Admit(ctx context.Context) error
}

// Generator implements domain.Embedder with the full fallback chain.
// provider may be nil, in which case every miss is computed locally.
type Generator struct {
	cache         *embcache.Cache
	limiter       RateLimiter
	provider      domain.Embedder
	fallback      *Fallback
	dimensions    int
	maxInputChars int
	timeout       time.Duration
	logger        *zap.Logger
}

// Config holds generator settings.
type Config struct {
	Cache         *embcache.Cache
	Limiter       RateLimiter
	Provider      domain.Embedder // nil when no credential is configured
	Dimensions    int
	MaxInputChars int
	Timeout       time.Duration
	Logger        *zap.Logger
}

// NewGenerator creates an embedding generator.
func NewGenerator(cfg Config) *Generator {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = domain.DefaultDimensions
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	if cfg.Cache == nil {
		cfg.Cache = embcache.New(0, 0, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Generator{
		cache:         cfg.Cache,
		limiter:       cfg.Limiter,
		provider:      cfg.Provider,
		fallback:      NewFallback(dims),
		dimensions:    dims,
		maxInputChars: maxChars,
		timeout:       timeout,
		logger:        cfg.Logger,
	}
}

// Dimensions returns the vector dimension this generator produces.
func (g *Generator) Dimensions() int { return g.dimensions }

// Embed returns a vector of exactly Dimensions() elements. The only error
// surfaced to the caller is domain.ErrEmptyInput; every provider failure is
// recovered via the deterministic fallback.
func (g *Generator) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, domain.ErrEmptyInput
	}

	if vec, ok := g.cache.Get(text); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	if g.provider == nil {
		return g.embedLocal(text), nil
	}

	if g.limiter != nil {
		if err := g.limiter.Admit(ctx); err != nil {
			// Caller gave up waiting for admission; the local computation still
			// satisfies it without touching the provider.
			g.logger.Warn("Rate limiter admission aborted, using local embedding", zap.Error(err))
			return g.embedLocal(text), nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.provider.Embed(callCtx, truncate(text, g.maxInputChars))
	if err != nil {
		g.logProviderFailure(err)
		return g.embedLocal(text), nil
	}

	if len(result.Embedding) != g.dimensions {
		g.logProviderFailure(fmt.Errorf(
			"expected %d dimensions, got %d: %w",
			g.dimensions, len(result.Embedding), domain.ErrInvalidResponseShape,
		))
		return g.embedLocal(text), nil
	}

	g.cache.Put(text, result.Embedding)
	return result, nil
}

// embedLocal computes, caches, and returns the deterministic vector.
func (g *Generator) embedLocal(text string) domain.EmbeddingResult {
	vec := g.fallback.Embed(text)
	g.cache.Put(text, vec)
	return domain.EmbeddingResult{Embedding: vec}
}

// logProviderFailure classifies the failure. Auth and shape errors mean the
// engine is running degraded until the configuration is fixed; rate limits,
// timeouts, and server errors are transient.
func (g *Generator) logProviderFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrProviderAuth),
		errors.Is(err, domain.ErrInvalidResponseShape):
		g.logger.Error("Embedding provider unusable, running on local embeddings", zap.Error(err))
	case errors.Is(err, domain.ErrProviderRateLimited),
		errors.Is(err, domain.ErrProviderTimeout),
		errors.Is(err, domain.ErrProviderServer):
		g.logger.Warn("Embedding provider failed, using local embedding", zap.Error(err))
	default:
		g.logger.Warn("Embedding provider failed with unclassified error", zap.Error(err))
	}
}

// truncate caps text at max bytes without splitting a UTF-8 sequence.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
