package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tokenscope/internal/dashboard"
	"tokenscope/internal/live"
	"tokenscope/internal/store"
	"tokenscope/internal/token"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// HistorySource serves recorded ticks for one token.
type HistorySource interface {
	History(ctx context.Context, id string, limit int) ([]store.Tick, error)
}

// Server serves the token HTTP API.
type Server struct {
	model   *live.LiveModel
	history HistorySource
	log     *slog.Logger
}

// NewServer creates a new HTTP API server over the live model.
func NewServer(model *live.LiveModel, log *slog.Logger) *Server {
	return &Server{model: model, log: log}
}

// SetHistory enables GET /api/tokens/{id}/history backed by h.
func (s *Server) SetHistory(h HistorySource) { s.history = h }

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tokens", s.handleTokens)
	mux.HandleFunc("GET /api/tokens/{id}", s.handleToken)
	mux.HandleFunc("GET /api/tokens/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /ws", s.handleWS)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseQuery reads sort, dir, q and category from the query string. Missing
// parameters fall back to market cap descending over every category.
func parseQuery(r *http.Request) (token.Sort, token.Filter, string, error) {
	q := r.URL.Query()
	spec := token.DefaultSort
	if v := q.Get("sort"); v != "" {
		key, err := token.ParseSortKey(v)
		if err != nil {
			return spec, token.FilterAll, "", err
		}
		spec.Key = key
	}
	dir, err := token.ParseDirection(q.Get("dir"))
	if err != nil {
		return spec, token.FilterAll, "", err
	}
	spec.Direction = dir

	filter := token.FilterAll
	if v := q.Get("category"); v != "" {
		filter, err = token.ParseFilter(v)
		if err != nil {
			return spec, token.FilterAll, "", err
		}
	}
	return spec, filter, strings.TrimSpace(q.Get("q")), nil
}

func filterParam(f token.Filter) string {
	if f.IsAll() {
		return "all"
	}
	return f.Category().Slug()
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	spec, filter, search, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := s.model.Snapshot()
	derived := dashboard.Derive(records, search, filter, spec)

	writeJSON(w, TokensResponse{
		Tokens:    tokensToJSON(derived),
		Matched:   len(derived),
		Totals:    totalsToJSON(token.Sum(records)),
		Sort:      spec.Key.Param(),
		Direction: spec.Direction.String(),
		Category:  filterParam(filter),
		Query:     search,
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.model.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("token %q not found", id))
		return
	}
	writeJSON(w, tokenToJSON(rec))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history not configured")
		return
	}
	id := r.PathValue("id")
	if _, ok := s.model.Get(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("token %q not found", id))
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	ticks, err := s.history.History(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Error("reading history", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	out := make([]TickJSON, len(ticks))
	for i, t := range ticks {
		out[i] = TickJSON{
			Price:      t.Price,
			Change24h:  t.Change24h,
			RecordedAt: time.UnixMilli(t.RecordedAt).UTC().Format(time.RFC3339Nano),
		}
	}
	writeJSON(w, HistoryResponse{ID: id, Ticks: out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatsJSON{
		Tokens:      len(s.model.Snapshot()),
		Subscribers: s.model.SubscriberCount(),
		Updates:     s.model.Sequence(),
	})
}
