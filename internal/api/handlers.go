package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jdoyle7/stock-valuation-system/internal/engine"
	"github.com/jdoyle7/stock-valuation-system/internal/models"
	"github.com/jdoyle7/stock-valuation-system/internal/render"
)

// RunService exposes the valuation runner to the HTTP layer
type RunService interface {
	Trigger(ctx context.Context) bool
	Latest() ([]*models.ValuationResult, time.Time)
	Running() bool
	States() map[string]engine.TickerState
}

// WatchlistStore defines the watchlist operations the HTTP layer needs
type WatchlistStore interface {
	GetAllWatchlistEntries() ([]*models.WatchlistEntry, error)
	UpsertWatchlistEntry(e *models.WatchlistEntry) error
	DeleteWatchlistEntry(symbol string) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	runner    RunService
	watchlist WatchlistStore
}

// NewHandler creates a new Handler. watchlist may be nil when the
// database-backed universe is disabled.
func NewHandler(runner RunService, watchlist WatchlistStore) *Handler {
	return &Handler{
		runner:    runner,
		watchlist: watchlist,
	}
}

// GetValuations handles GET /api/v1/valuations
func (h *Handler) GetValuations(w http.ResponseWriter, r *http.Request) {
	results, lastRun := h.runner.Latest()
	if results == nil {
		results = []*models.ValuationResult{}
	} else {
		sorted := make([]*models.ValuationResult, len(results))
		copy(sorted, results)
		render.Sort(sorted)
		results = sorted
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":  results,
		"last_run": lastRun,
		"running":  h.runner.Running(),
	})
}

// TriggerRun handles POST /api/v1/valuations/run
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	// Runs outlive the request; detach from the request context
	if !h.runner.Trigger(context.Background()) {
		http.Error(w, "a valuation run is already in progress", http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// GetRunStatus handles GET /api/v1/valuations/status
func (h *Handler) GetRunStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.runner.Running(),
		"tickers": h.runner.States(),
	})
}

// GetWatchlist handles GET /api/v1/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		http.Error(w, "watchlist store is not configured", http.StatusServiceUnavailable)
		return
	}

	entries, err := h.watchlist.GetAllWatchlistEntries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.WatchlistEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// AddWatchlistEntry handles POST /api/v1/watchlist
func (h *Handler) AddWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		http.Error(w, "watchlist store is not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Symbol   string `json:"symbol"`
		Priority int    `json:"priority"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	entry := &models.WatchlistEntry{
		Symbol:   req.Symbol,
		Enabled:  true,
		Priority: req.Priority,
		Note:     req.Note,
	}
	if err := h.watchlist.UpsertWatchlistEntry(entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// RemoveWatchlistEntry handles DELETE /api/v1/watchlist/{symbol}
func (h *Handler) RemoveWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		http.Error(w, "watchlist store is not configured", http.StatusServiceUnavailable)
		return
	}

	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if err := h.watchlist.DeleteWatchlistEntry(symbol); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
