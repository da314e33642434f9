package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"matrix-bruteforce/internal/bruteforce"
	"matrix-bruteforce/internal/db"
	"matrix-bruteforce/internal/logger"
	"matrix-bruteforce/internal/report"
	"matrix-bruteforce/internal/scanner"
)

// GlobalStats represents overall statistics
type GlobalStats struct {
	Scanner         scanner.Stats `json:"scanner"`
	TotalRuns       int           `json:"total_runs"`
	TotalMatches    int           `json:"total_matches"`
	Targets         int           `json:"targets"`
	DatabaseHealthy bool          `json:"database_healthy"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Database db.HealthStatus `json:"database"`
}

// Handler holds HTTP handler dependencies
type Handler struct {
	scanner       *scanner.Scanner
	db            db.Database
	logger        *logger.Logger
	defaultTarget string
}

// NewHandler creates a new API handler. Requests without a char parameter
// search for defaultTarget.
func NewHandler(s *scanner.Scanner, database db.Database, log *logger.Logger, defaultTarget string) *Handler {
	return &Handler{
		scanner:       s,
		db:            database,
		logger:        log,
		defaultTarget: defaultTarget,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/search", h.handleSearch)
	mux.HandleFunc("/api/chart", h.handleChart)
	mux.HandleFunc("/api/runs", h.handleRuns)
	mux.HandleFunc("/api/runs/{id}", h.handleRun)
	mux.HandleFunc("/api/stats", h.handleStats)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/logs", h.handleLogs)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) target(r *http.Request) string {
	if q := r.URL.Query(); q.Has("char") {
		return q.Get("char")
	}
	return h.defaultTarget
}

// runError maps a scanner error onto an HTTP status
func (h *Handler) runError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bruteforce.ErrInvalidTarget):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	default:
		h.logger.Error("Search failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	res, err := h.scanner.Run(ctx, h.target(r))
	if err != nil {
		h.runError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	res, err := h.scanner.Run(ctx, h.target(r))
	if err != nil {
		h.runError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.RenderScatter(&buf, res.Target, res.Matches); err != nil {
		h.logger.Error("Failed to render chart: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var runs []db.Run
	var err error
	if chars := r.URL.Query().Get("char"); chars != "" {
		var targets []string
		for _, c := range strings.Split(chars, ",") {
			if c = strings.TrimSpace(c); c != "" {
				targets = append(targets, c)
			}
		}
		runs, err = h.db.GetRunsByTargets(ctx, targets)
	} else {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err = h.db.GetRuns(ctx, limit)
	}
	if err != nil {
		h.logger.Error("Failed to get runs: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	run, err := h.db.GetRun(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to get run %d: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dbStats, err := h.db.GetStats(ctx)

	stats := GlobalStats{
		Scanner:         h.scanner.Stats(),
		DatabaseHealthy: true,
	}

	if err != nil {
		h.logger.Warn("Failed to get stats: %v", err)
		stats.DatabaseHealthy = false
	} else if dbStats != nil {
		stats.TotalRuns = dbStats.TotalRuns
		stats.TotalMatches = dbStats.TotalMatches
		stats.Targets = dbStats.Targets
		stats.DatabaseHealthy = dbStats.Healthy
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbHealth := h.db.Health(ctx)

	status, code := "healthy", http.StatusOK
	if !dbHealth.Connected {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:   status,
		Database: dbHealth,
	})
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.logger.GetEntries())
}
