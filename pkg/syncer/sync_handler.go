package syncer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/m-J-K-b/chronoscope/internal/rest"
	"github.com/m-J-K-b/chronoscope/pkg/feed"
)

type SyncHandler struct {
	service SyncService
}

type OutcomeDTO struct {
	FeedID       int    `json:"feedId"`
	FeedName     string `json:"feedName,omitempty"`
	Status       string `json:"status"`
	EventsStored int    `json:"eventsStored"`
	Error        string `json:"error,omitempty"`
}

type bulkSyncResponse struct {
	Outcomes []OutcomeDTO `json:"outcomes"`
	Warnings []string     `json:"warnings,omitempty"`
}

func NewSyncHandler(service SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// SyncFeed resynchronizes a single feed. A failed sync is an advisory
// condition, not an HTTP error: the response reports it in the body.
func (h *SyncHandler) SyncFeed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	feedId, err := strconv.Atoi(vars["feedId"])
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid feed id",
			Details: "'feedId' must be an integer",
		}); encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}

	outcome := h.service.SynchronizeFeed(r.Context(), feedId)
	if errors.Is(outcome.Err, feed.ErrFeedNotFound) {
		http.Error(w, "feed not found", http.StatusNotFound)
		return
	}
	if errors.Is(outcome.Err, ErrFeedNotSyncable) {
		http.Error(w, "owned feeds cannot be synchronized", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(outcomeToDTO(outcome)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// SyncAllFeeds resynchronizes every imported feed and reports per-feed
// outcomes. Failures surface as warnings; the request itself succeeds.
func (h *SyncHandler) SyncAllFeeds(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.service.SynchronizeAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := bulkSyncResponse{Outcomes: make([]OutcomeDTO, 0, len(outcomes))}
	for _, outcome := range outcomes {
		resp.Outcomes = append(resp.Outcomes, outcomeToDTO(outcome))
		if !outcome.Success() {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("Feed '%s' couldn't be processed", outcome.FeedName))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func outcomeToDTO(o Outcome) OutcomeDTO {
	dto := OutcomeDTO{
		FeedID:       o.FeedID,
		FeedName:     o.FeedName,
		Status:       "success",
		EventsStored: o.EventsStored,
	}
	if !o.Success() {
		dto.Status = "failed"
		dto.Error = o.Err.Error()
	}
	return dto
}
