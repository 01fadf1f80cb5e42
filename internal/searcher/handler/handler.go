// Package handler exposes the search server over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/analytics/requests"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/dedup"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/batch"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/logger"
)

const maxBodyBytes = 2 << 20

type Handler struct {
	server      *searcher.Server
	queue       *requests.Queue
	defaultMode execution.Mode
	workers     int
	logger      *slog.Logger
}

func New(server *searcher.Server, queue *requests.Queue, defaultMode execution.Mode, workers int) *Handler {
	return &Handler{
		server:      server,
		queue:       queue,
		defaultMode: defaultMode,
		workers:     workers,
		logger:      slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search/batch", h.BatchSearch)
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("POST /api/v1/documents/dedup", h.RemoveDuplicates)
	mux.HandleFunc("GET /api/v1/documents/{id}/match", h.Match)
	mux.HandleFunc("GET /api/v1/documents/{id}/frequencies", h.Frequencies)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
}

type SearchResponse struct {
	Query     string            `json:"query"`
	Mode      string            `json:"mode"`
	Results   []ranker.Document `json:"results"`
	LatencyMs float64           `json:"latency_ms"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	mode, err := h.mode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var pred ranker.Predicate
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := index.ParseStatus(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		pred = ranker.ByStatus(status)
	}

	docs, err := h.queue.AddFindRequest(query, pred, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []ranker.Document{}
	}
	latency := time.Since(start)
	log.Info("search completed",
		"query", query,
		"mode", mode.String(),
		"returned", len(docs),
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:     query,
		Mode:      mode.String(),
		Results:   docs,
		LatencyMs: float64(latency.Microseconds()) / 1000,
	})
}

type BatchRequest struct {
	Queries []string `json:"queries"`
	Joined  bool     `json:"joined"`
}

func (h *Handler) BatchSearch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Joined {
		docs, err := batch.ProcessQueriesJoined(h.server, req.Queries, h.workers)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"results": docs})
		return
	}
	results, err := batch.ProcessQueries(h.server, req.Queries, h.workers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var rec corpus.Record
	if err := h.decode(w, r, &rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := corpus.Ingest(h.server, []corpus.Record{rec}); err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("document added", "doc_id", rec.ID)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"id":        rec.ID,
		"documents": h.server.DocumentCount(),
	})
}

type MatchResponse struct {
	ID     int          `json:"id"`
	Words  []string     `json:"words"`
	Status index.Status `json:"status"`
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	mode, err := h.mode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	words, status, err := h.server.MatchDocument(r.URL.Query().Get("q"), id, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MatchResponse{ID: id, Words: words, Status: status})
}

func (h *Handler) Frequencies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"frequencies": h.server.GetWordFrequencies(id),
	})
}

func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	mode, err := h.mode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.server.RemoveDocument(id, mode)
	logger.FromContext(r.Context()).Info("document removed", "doc_id", id, "mode", mode.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveDuplicates(w http.ResponseWriter, r *http.Request) {
	removed := dedup.RemoveDuplicates(h.server, logger.FromContext(r.Context()))
	if removed == nil {
		removed = []int{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"removed":   removed,
		"documents": h.server.DocumentCount(),
	})
}

type StatsResponse struct {
	Documents        int      `json:"documents"`
	NoResultRequests int      `json:"no_result_requests"`
	WindowSize       int      `json:"window_size"`
	WindowCapacity   int      `json:"window_capacity"`
	StopWords        []string `json:"stop_words"`
	DefaultMode      string   `json:"default_mode"`
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, StatsResponse{
		Documents:        h.server.DocumentCount(),
		NoResultRequests: h.queue.NoResultRequests(),
		WindowSize:       h.queue.Len(),
		WindowCapacity:   h.queue.Capacity(),
		StopWords:        h.server.StopWords(),
		DefaultMode:      h.defaultMode.String(),
	})
}

func (h *Handler) mode(r *http.Request) (execution.Mode, error) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return h.defaultMode, nil
	}
	return execution.ParseMode(raw)
}

func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "document id %q is not an integer", raw)
	}
	return id, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding request body: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
