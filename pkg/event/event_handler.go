package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/m-J-K-b/chronoscope/internal/rest"
)

type EventHandler struct {
	service EventService
}

type EventDTO struct {
	UID         string    `json:"uid"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start"`
	EndTime     time.Time `json:"end"`
	FeedID      int       `json:"feedId"`
}

type createEventRequest struct {
	FeedID      int    `json:"feedId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{service: service}
}

// CreateEvent adds a manual event to an owned feed. The end timestamp is
// optional and defaults to the start.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "Invalid event", "'name' is required")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeBadRequest(w, "Invalid start format", "'start' must be in RFC3339 format")
		return
	}
	var end time.Time
	if req.End != "" {
		end, err = time.Parse(time.RFC3339, req.End)
		if err != nil {
			writeBadRequest(w, "Invalid end format", "'end' must be in RFC3339 format")
			return
		}
	}

	created, err := h.service.AddEvent(r.Context(), Event{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		FeedID:      req.FeedID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEndBeforeStart):
			writeBadRequest(w, "Invalid event", "'end' must not be earlier than 'start'")
		case errors.Is(err, ErrFeedNotWritable):
			writeBadRequest(w, "Invalid target feed", "manual events can only be added to owned feeds")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := eventUidFromRequest(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(r.Context(), uid)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	uid, ok := eventUidFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEvent(r.Context(), uid); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventUidFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	uid, err := uuid.Parse(vars["eventUid"])
	if err != nil {
		writeBadRequest(w, "Invalid event uid", "'eventUid' must be a UUID")
		return uuid.Nil, false
	}
	return uid, true
}

func writeBadRequest(w http.ResponseWriter, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		UID:         e.UID.String(),
		Name:        e.Name,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		FeedID:      e.FeedID,
	}
}
