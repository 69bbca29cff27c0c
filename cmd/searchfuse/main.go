package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/config"
	"github.com/lumeris-ai/searchfuse/internal/db/postgres"
	"github.com/lumeris-ai/searchfuse/internal/domain"
	"github.com/lumeris-ai/searchfuse/internal/embcache"
	"github.com/lumeris-ai/searchfuse/internal/embedding"
	logpkg "github.com/lumeris-ai/searchfuse/internal/logger"
	"github.com/lumeris-ai/searchfuse/internal/metrics"
	"github.com/lumeris-ai/searchfuse/internal/ratelimit"
	documentrepo "github.com/lumeris-ai/searchfuse/internal/repository/document"
	searchrepo "github.com/lumeris-ai/searchfuse/internal/repository/search"
	chiTransport "github.com/lumeris-ai/searchfuse/internal/transport/chi"
	openaiEmb "github.com/lumeris-ai/searchfuse/internal/transport/openai"
	healthuc "github.com/lumeris-ai/searchfuse/internal/usecase/health"
	indexuc "github.com/lumeris-ai/searchfuse/internal/usecase/index"
	searchuc "github.com/lumeris-ai/searchfuse/internal/usecase/search"
	"github.com/lumeris-ai/searchfuse/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchfuse API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	store, err := postgres.NewStore(postgres.Config{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	// Build the embedding chain — composition root
	cache := embcache.New(
		cfg.Cache.Capacity,
		time.Duration(cfg.Cache.TTLHours)*time.Hour,
		metrics.EmbeddingCacheTotal,
	)
	limiter := ratelimit.New(cfg.Embedding.RateLimit, ratelimit.DefaultWindow)

	// Without a credential the remote provider stays out of the chain and
	// every cache miss is computed locally.
	var provider domain.Embedder
	if cfg.Embedding.APIKey != "" {
		provider = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   "openai",
			Logger:     logger,
		})
		logger.Info("Embedding provider configured",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Warn("No embedding API key configured, using local fallback only")
	}

	embedder := embedding.NewGenerator(embedding.Config{
		Cache:         cache,
		Limiter:       limiter,
		Provider:      provider,
		Dimensions:    cfg.Embedding.Dimensions,
		MaxInputChars: cfg.Embedding.MaxInputChars,
		Timeout:       time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:        logger,
	})

	// Repositories and use case services
	searchRepo := searchrepo.New(store)
	docRepo := documentrepo.New(store)

	searchSvc := searchuc.New(searchRepo, embedder, logger).
		WithCandidateCap(cfg.Index.CandidateCap)
	indexSvc := indexuc.New(docRepo, embedder, logger).
		WithBatching(cfg.Index.BatchSize, time.Duration(cfg.Index.BatchPauseMS)*time.Millisecond)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(provider))

	// Create chi server
	server := chiTransport.NewServer(searchSvc, indexSvc, healthSvc, embedder, cache, limiter, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker adapts an optional remote provider to
// health.EmbeddingChecker. A nil provider always reports healthy: local
// fallback embedding has no remote dependency to check.
type embeddingHealthChecker struct {
	provider domain.Embedder
}

func newEmbeddingHealthChecker(provider domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{provider: provider}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.provider.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
