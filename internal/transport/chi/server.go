// Package chi exposes the search engine over a thin JSON HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lumeris-ai/searchfuse/internal/domain"
	"github.com/lumeris-ai/searchfuse/internal/embcache"
	healthuc "github.com/lumeris-ai/searchfuse/internal/usecase/health"
	indexuc "github.com/lumeris-ai/searchfuse/internal/usecase/index"
	searchuc "github.com/lumeris-ai/searchfuse/internal/usecase/search"
)

// MaxBatchItems caps a single batch index request.
const MaxBatchItems = 100

// Server wires the usecases into HTTP handlers.
type Server struct {
	search  *searchuc.Service
	index   *indexuc.Service
	health  *healthuc.Service
	embed   domain.Embedder
	cache   *embcache.Cache
	limiter interface{ Len() int }
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	index *indexuc.Service,
	health *healthuc.Service,
	embed domain.Embedder,
	cache *embcache.Cache,
	limiter interface{ Len() int },
	logger *zap.Logger,
) *Server {
	return &Server{
		search: search, index: index, health: health,
		embed: embed, cache: cache, limiter: limiter, logger: logger,
	}
}

// Routes mounts all API routes on the given router. Middleware is the
// caller's responsibility; health and metrics stay unauthenticated.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/stats", s.handleStats)
	r.Post("/search", s.handleSearch)
	r.Post("/documents", s.handleIndex)
	r.Post("/documents/batch", s.handleBatchIndex)
	r.Post("/embed", s.handleEmbed)
}

type searchRequest struct {
	Query    string  `json:"query"`
	Method   string  `json:"method"`
	Limit    int     `json:"limit"`
	MinScore float64 `json:"min_score"`
}

type searchResultDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	BM25Score   float64           `json:"bm25_score"`
	VectorScore float64           `json:"vector_score"`
	HybridScore float64           `json:"hybrid_score"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	method := domain.Method(req.Method)
	if req.Method == "" {
		method = domain.MethodHybrid
	}

	results, err := s.search.Search(r.Context(), req.Query, method, req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dtos := make([]searchResultDTO, 0, len(results))
	for i := range results {
		res := &results[i]
		if req.MinScore > 0 && res.HybridScore() < req.MinScore {
			continue
		}
		dtos = append(dtos, searchResultDTO{
			ID:          res.ID(),
			Title:       res.Title(),
			Content:     res.Content(),
			BM25Score:   res.BM25Score(),
			VectorScore: res.VectorScore(),
			HybridScore: res.HybridScore(),
			Metadata:    res.Metadata(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": dtos})
}

type indexRequest struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.index.Index(r.Context(), req.Title, req.Content, req.Metadata)
	if err != nil {
		s.writeIndexError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type batchIndexRequest struct {
	Documents []indexRequest `json:"documents"`
}

type batchResultDTO struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleBatchIndex(w http.ResponseWriter, r *http.Request) {
	var req batchIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents is required")
		return
	}
	if len(req.Documents) > MaxBatchItems {
		writeError(w, http.StatusBadRequest, "batch too large")
		return
	}

	items := make([]indexuc.Request, len(req.Documents))
	for i, d := range req.Documents {
		items[i] = indexuc.Request{Title: d.Title, Content: d.Content, Metadata: d.Metadata}
	}

	results := s.index.BatchIndex(r.Context(), items)

	dtos := make([]batchResultDTO, len(results))
	for i, res := range results {
		dtos[i] = batchResultDTO{ID: res.ID(), Status: string(res.Status())}
		if res.Err() != nil {
			dtos[i].Error = res.Err().Error()
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": dtos})
}

type embedRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.embed.Embed(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		s.logger.Error("Embed request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "embedding failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"embedding":  result.Embedding,
		"dimensions": len(result.Embedding),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache":        s.cache.Stats(),
		"rate_limiter": map[string]int{"in_window": s.limiter.Len()},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) writeIndexError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDocumentInvalid), errors.Is(err, domain.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreWrite):
		s.logger.Error("Document write failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "document store write failed")
	default:
		s.logger.Error("Index request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
