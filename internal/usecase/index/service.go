// Package index embeds and persists documents, singly and in batches.
package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/domain"
)

// DefaultBatchSize is the number of documents processed per batch.
const DefaultBatchSize = 10

// DefaultBatchPause is the delay between batches. Backpressure against the
// embedding provider, not a correctness requirement.
const DefaultBatchPause = 200 * time.Millisecond

// Service indexes documents with automatic vectorization.
type Service struct {
	repo       Repository
	embed      Embedder
	batchSize  int
	batchPause time.Duration
	poolSize   int
	logger     *zap.Logger
}

// New creates an indexing service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		embed:      embed,
		batchSize:  DefaultBatchSize,
		batchPause: DefaultBatchPause,
		poolSize:   DefaultBatchSize,
		logger:     logger,
	}
}

// WithBatching overrides batch size and inter-batch pause.
func (s *Service) WithBatching(size int, pause time.Duration) *Service {
	if size > 0 {
		s.batchSize = size
	}
	if pause >= 0 {
		s.batchPause = pause
	}
	return s
}

// Index embeds and persists a single document, returning its generated id.
// Write failures propagate: there is no safe fallback for a write.
func (s *Service) Index(
	ctx context.Context, title, content string, metadata map[string]string,
) (string, error) {
	doc, err := domain.NewDocument(uuid.NewString(), title, content, metadata)
	if err != nil {
		return "", err
	}

	embResult, err := s.embed.Embed(ctx, doc.EmbeddingText())
	if err != nil {
		return "", fmt.Errorf("vectorize document: %w", err)
	}
	doc.SetVector(embResult.Embedding)

	id, err := s.repo.Insert(ctx, &doc)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	s.logger.Debug("Indexed document",
		zap.String("id", id), zap.String("title", title))
	return id, nil
}

// BatchIndex processes requests in fixed-size batches with an inter-batch
// pause. Items inside a batch run concurrently on a bounded worker pool; a
// failed item is recorded in its slot and never aborts the batch.
func (s *Service) BatchIndex(ctx context.Context, items []Request) []domain.BatchResult {
	results := make([]domain.BatchResult, len(items))

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		for i := range items {
			results[i] = domain.NewBatchError("", fmt.Errorf("create worker pool: %w", err))
		}
		return results
	}
	defer pool.Release()

	for start := 0; start < len(items); start += s.batchSize {
		end := start + s.batchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				results[i] = s.indexItem(ctx, items[i])
			})
			if submitErr != nil {
				wg.Done()
				results[i] = domain.NewBatchError("", fmt.Errorf("submit to pool: %w", submitErr))
			}
		}
		wg.Wait()

		if end < len(items) && s.batchPause > 0 {
			select {
			case <-ctx.Done():
				for i := end; i < len(items); i++ {
					results[i] = domain.NewBatchError("", ctx.Err())
				}
				return results
			case <-time.After(s.batchPause):
			}
		}
	}

	return results
}

func (s *Service) indexItem(ctx context.Context, item Request) domain.BatchResult {
	id, err := s.Index(ctx, item.Title, item.Content, item.Metadata)
	if err != nil {
		s.logger.Warn("Batch item failed",
			zap.String("title", item.Title), zap.Error(err))
		return domain.NewBatchError("", err)
	}
	return domain.NewBatchOK(id)
}
