package app

import (
	"github.com/gorilla/mux"
	"github.com/m-J-K-b/chronoscope/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Feeds
	r.HandleFunc("/api/feed", deps.FeedHandler.CreateFeed).Methods("POST")
	r.HandleFunc("/api/feed", deps.FeedHandler.GetFeeds).Methods("GET")
	r.HandleFunc("/api/feed/sync", deps.SyncHandler.SyncAllFeeds).Methods("POST")
	r.HandleFunc("/api/feed/{feedId}", deps.FeedHandler.GetFeed).Methods("GET")
	r.HandleFunc("/api/feed/{feedId}", deps.FeedHandler.DeleteFeed).Methods("DELETE")
	r.HandleFunc("/api/feed/{feedId}/sync", deps.SyncHandler.SyncFeed).Methods("POST")

	// Manual events (owned feeds)
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Agenda
	r.HandleFunc("/api/agenda", deps.AgendaHandler.GetAgenda).Methods("GET")
}
