package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Valuation routes
	api.HandleFunc("/valuations", handler.GetValuations).Methods("GET")
	api.HandleFunc("/valuations/run", handler.TriggerRun).Methods("POST")
	api.HandleFunc("/valuations/status", handler.GetRunStatus).Methods("GET")

	// Watchlist routes
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddWatchlistEntry).Methods("POST")
	api.HandleFunc("/watchlist/{symbol}", handler.RemoveWatchlistEntry).Methods("DELETE")

	return r
}
