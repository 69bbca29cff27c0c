package searchfuse

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn          string
	maxOpenConns int
	maxIdleConns int

	apiKey  string
	baseURL string
	model   string

	dimensions    int
	maxInputChars int
	timeout       time.Duration

	cacheCapacity int
	cacheTTL      time.Duration
	rateLimit     int

	batchSize    int
	batchPause   time.Duration
	candidateCap int

	fallback FallbackCorpus
	logger   *zap.Logger
}

// WithPostgres configures the document store connection.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithConnPool sets database connection pool limits.
func WithConnPool(maxOpen, maxIdle int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxOpenConns = maxOpen
		c.maxIdleConns = maxIdle
	})
}

// WithOpenAI sets the remote embedding provider. Without it, embeddings are
// computed by the deterministic local generator.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
		c.model = model
	})
}

// WithDimensions sets the embedding vector dimension. Defaults to 1536.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithCache sets embedding cache capacity and entry TTL.
// Defaults: 1000 entries, 24 hours.
func WithCache(capacity int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheCapacity = capacity
		c.cacheTTL = ttl
	})
}

// WithRateLimit caps remote embedding calls per minute. Default: 500.
func WithRateLimit(perMinute int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = perMinute
	})
}

// WithBatching sets batch size and inter-batch pause for bulk indexing.
// Defaults: 10 documents, 200ms.
func WithBatching(size int, pause time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
		c.batchPause = pause
	})
}

// WithCandidateCap sets how many candidates each leg of a hybrid search
// fetches before fusion. Default: 100.
func WithCandidateCap(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateCap = n
	})
}

// WithFallbackCorpus supplies results for keyword searches that fail or come
// back empty. Default: none (empty results).
func WithFallbackCorpus(fc FallbackCorpus) Option {
	return optionFunc(func(c *clientConfig) {
		c.fallback = fc
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
