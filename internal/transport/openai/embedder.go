// Package openai is the embedding provider transport for OpenAI-compatible APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/domain"
	"github.com/lumeris-ai/searchfuse/internal/metrics"
)

// Embedder calls a remote embedding provider over HTTP.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder. Failures are classified into the typed
// provider errors so the generator can decide how to degrade.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()

	resp, err := e.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		classified := classifyError(err)
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), errorLabel(classified)).Inc()
		return domain.EmbeddingResult{}, classified
	}

	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, string(e.model), "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrInvalidResponseShape)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, string(e.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, string(e.model)).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, string(e.model), "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, string(e.model), "total").Add(float64(totalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// classifyError maps transport failures onto the typed provider errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("embedding request aborted: %w", domain.ErrProviderTimeout)
	}

	status := 0
	detail := err.Error()

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		detail = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		detail = string(reqErr.Body)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("embedding API error %d: %s: %w", status, detail, domain.ErrProviderAuth)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("embedding API error %d: %s: %w", status, detail, domain.ErrProviderRateLimited)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("embedding API error %d: %s: %w", status, detail, domain.ErrProviderServer)
	default:
		// Transport-level failures without an HTTP status (connection reset,
		// malformed body) count as server-side trouble.
		return fmt.Errorf("embedding request failed: %s: %w", detail, domain.ErrProviderServer)
	}
}

// errorLabel keeps metric label cardinality to the error taxonomy.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrProviderAuth):
		return "auth"
	case errors.Is(err, domain.ErrProviderRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrProviderServer):
		return "server"
	default:
		return "unknown"
	}
}
