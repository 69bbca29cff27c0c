// Package search executes keyword, vector, and hybrid document searches.
// Searches always return a ranked (possibly empty) list: every failure is
// recovered by downgrading to a strictly less dependent method.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lumeris-ai/searchfuse/internal/domain"
	"github.com/lumeris-ai/searchfuse/internal/metrics"
)

// DefaultCandidateCap bounds each method's candidate list before fusion.
const DefaultCandidateCap = 100

// DefaultLimit is used when the caller passes a non-positive limit.
const DefaultLimit = 10

// Service handles document search across bm25, vector, and hybrid methods.
type Service struct {
	repo         Repository
	embed        Embedder
	fallback     FallbackCorpus
	candidateCap int
	logger       *zap.Logger
}

// New creates a search service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		embed:        embed,
		candidateCap: DefaultCandidateCap,
		logger:       logger,
	}
}

// WithFallbackCorpus installs the policy consulted when the keyword path
// fails or returns nothing.
func (s *Service) WithFallbackCorpus(fc FallbackCorpus) *Service {
	s.fallback = fc
	return s
}

// WithCandidateCap overrides the per-method candidate bound.
func (s *Service) WithCandidateCap(n int) *Service {
	if n > 0 {
		s.candidateCap = n
	}
	return s
}

// Search dispatches a query to the requested method. An unknown method is
// the only error a caller can see.
func (s *Service) Search(
	ctx context.Context, query string, method domain.Method, limit int,
) ([]domain.SearchResult, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("unsupported search method: %s", method)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch method {
	case domain.MethodBM25:
		return s.SearchBM25(ctx, query, limit), nil
	case domain.MethodVector:
		return s.SearchVector(ctx, query, limit), nil
	default:
		return s.SearchHybrid(ctx, query, limit), nil
	}
}

// SearchBM25 runs a keyword-ranked query. Store errors are logged and
// answered with the fallback corpus, never propagated.
func (s *Service) SearchBM25(ctx context.Context, query string, limit int) []domain.SearchResult {
	results, err := s.repo.SearchBM25(ctx, query, limit)
	if err != nil {
		s.logger.Warn("Keyword search failed, serving fallback corpus",
			zap.String("query", query), zap.Error(err))
		metrics.SearchDegradedTotal.WithLabelValues("bm25", "store_error").Inc()
		return s.fallbackResults(query, limit)
	}
	if len(results) == 0 {
		return s.fallbackResults(query, limit)
	}
	return results
}

// SearchVector embeds the query and ranks by cosine similarity. Without
// vector capability, or on any failure, it degrades to SearchBM25.
func (s *Service) SearchVector(ctx context.Context, query string, limit int) []domain.SearchResult {
	if !s.repo.SupportsVector(ctx) {
		metrics.SearchDegradedTotal.WithLabelValues("vector", "no_capability").Inc()
		return s.SearchBM25(ctx, query, limit)
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("Query embedding failed, degrading to keyword search",
			zap.String("query", query), zap.Error(err))
		metrics.SearchDegradedTotal.WithLabelValues("vector", "embed_error").Inc()
		return s.SearchBM25(ctx, query, limit)
	}

	results, err := s.repo.SearchVector(ctx, embResult.Embedding, limit)
	if err != nil {
		s.logger.Warn("Vector search failed, degrading to keyword search",
			zap.String("query", query), zap.Error(err))
		metrics.SearchDegradedTotal.WithLabelValues("vector", "store_error").Inc()
		return s.SearchBM25(ctx, query, limit)
	}
	return results
}

// SearchHybrid runs the keyword and vector legs concurrently and fuses them
// via RRF. Any failure on either leg degrades the whole query to SearchBM25;
// the caller never observes a partial failure of the vector path.
func (s *Service) SearchHybrid(ctx context.Context, query string, limit int) []domain.SearchResult {
	if !s.repo.SupportsVector(ctx) {
		metrics.SearchDegradedTotal.WithLabelValues("hybrid", "no_capability").Inc()
		return s.SearchBM25(ctx, query, limit)
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("Query embedding failed, degrading to keyword search",
			zap.String("query", query), zap.Error(err))
		metrics.SearchDegradedTotal.WithLabelValues("hybrid", "embed_error").Inc()
		return s.SearchBM25(ctx, query, limit)
	}

	var bm25Results, vectorResults []domain.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var legErr error
		bm25Results, legErr = s.repo.SearchBM25(gctx, query, s.candidateCap)
		return legErr
	})
	g.Go(func() error {
		var legErr error
		vectorResults, legErr = s.repo.SearchVector(gctx, embResult.Embedding, s.candidateCap)
		return legErr
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Hybrid search leg failed, degrading to keyword search",
			zap.String("query", query), zap.Error(err))
		metrics.SearchDegradedTotal.WithLabelValues("hybrid", "leg_error").Inc()
		return s.SearchBM25(ctx, query, limit)
	}

	return fuseRRF(bm25Results, vectorResults, limit)
}

func (s *Service) fallbackResults(query string, limit int) []domain.SearchResult {
	if s.fallback == nil {
		return []domain.SearchResult{}
	}
	return s.fallback(query, limit)
}
