package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/m-J-K-b/chronoscope/internal/rest"
	log "github.com/sirupsen/logrus"
)

// SyncTrigger synchronizes a single feed and reports how many events were
// stored. It is injected as a function to keep the sync package decoupled.
type SyncTrigger func(ctx context.Context, feedId int) (int, error)

type FeedHandler struct {
	service  FeedService
	syncFeed SyncTrigger
}

type FeedDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Owned     bool   `json:"owned"`
}

type createFeedRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type createFeedResponse struct {
	Feed         FeedDTO `json:"feed"`
	EventsStored *int    `json:"eventsStored,omitempty"`
	Warning      string  `json:"warning,omitempty"`
}

func NewFeedHandler(service FeedService, syncFeed SyncTrigger) *FeedHandler {
	return &FeedHandler{service: service, syncFeed: syncFeed}
}

// CreateFeed registers a feed and, when it has a source URL, runs its first
// synchronization immediately. A failed first sync does not undo the
// creation; it is reported as a warning instead.
func (h *FeedHandler) CreateFeed(w http.ResponseWriter, r *http.Request) {
	var req createFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid feed",
			Details: "'name' is required",
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	created, err := h.service.CreateFeed(r.Context(), req.Name, req.URL)
	if err != nil {
		if errors.Is(err, ErrFeedAlreadyExists) {
			http.Error(w, "feed already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := createFeedResponse{Feed: feedToDTO(created)}
	if !created.Owned {
		stored, syncErr := h.syncFeed(r.Context(), created.ID)
		if syncErr != nil {
			log.Warnf("initial sync of feed %q failed: %v", created.Name, syncErr)
			resp.Warning = fmt.Sprintf("Feed '%s' couldn't be processed", created.Name)
		} else {
			resp.EventsStored = &stored
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *FeedHandler) GetFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := h.service.GetAllFeeds(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]FeedDTO, 0, len(feeds))
	for _, f := range feeds {
		dtos = append(dtos, feedToDTO(f))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	feedId, ok := feedIdFromRequest(w, r)
	if !ok {
		return
	}

	feed, err := h.service.GetFeed(r.Context(), feedId)
	if err != nil {
		if errors.Is(err, ErrFeedNotFound) {
			http.Error(w, "feed not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(feedToDTO(feed)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *FeedHandler) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	feedId, ok := feedIdFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFeed(r.Context(), feedId); err != nil {
		if errors.Is(err, ErrFeedNotFound) {
			http.Error(w, "feed not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func feedIdFromRequest(w http.ResponseWriter, r *http.Request) (int, bool) {
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
		return 0, false
	}
	return feedId, true
}

func feedToDTO(f Feed) FeedDTO {
	return FeedDTO{
		ID:        f.ID,
		Name:      f.Name,
		SourceURL: f.SourceURL,
		Owned:     f.Owned,
	}
}
