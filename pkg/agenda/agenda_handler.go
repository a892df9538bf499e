package agenda

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/m-J-K-b/chronoscope/internal/rest"
	"github.com/m-J-K-b/chronoscope/pkg/event"
)

type AgendaHandler struct {
	service ViewService
}

type AgendaEventDTO struct {
	UID         string    `json:"uid"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start"`
	EndTime     time.Time `json:"end"`
	FeedID      int       `json:"feedId"`
}

type DateBucketDTO struct {
	Date   string           `json:"date"`
	Events []AgendaEventDTO `json:"events"`
}

type UpcomingDTO struct {
	Event          AgendaEventDTO `json:"event"`
	DaysUntilStart int            `json:"daysUntilStart"`
	Countdown      string         `json:"countdown"`
}

type ViewDTO struct {
	ReferenceDate string          `json:"referenceDate"`
	Buckets       []DateBucketDTO `json:"buckets"`
	Upcoming      []UpcomingDTO   `json:"upcoming"`
	UpcomingCount int             `json:"upcomingCount"`
}

func NewAgendaHandler(service ViewService) *AgendaHandler {
	return &AgendaHandler{service: service}
}

// GetAgenda returns the day-grouped view. The optional `date` query
// parameter (YYYY-MM-DD) overrides today; repeatable `feedId` parameters
// restrict the view to those feeds.
func (h *AgendaHandler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	var referenceDate time.Time
	if dateString := r.URL.Query().Get("date"); dateString != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateString, time.Local)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid date format",
				Details: "'date' must be in YYYY-MM-DD format",
			}); encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		referenceDate = parsed
	}

	feedFilter := make([]int, 0)
	for _, raw := range r.URL.Query()["feedId"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid feed filter",
				Details: "'feedId' must be an integer",
			}); encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		feedFilter = append(feedFilter, id)
	}

	view, err := h.service.GetView(r.Context(), referenceDate, feedFilter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := RenderCSV(view)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(viewToDTO(view)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func viewToDTO(view View) ViewDTO {
	dto := ViewDTO{
		ReferenceDate: view.ReferenceDate.Format("2006-01-02"),
		Buckets:       make([]DateBucketDTO, 0, len(view.Buckets)),
		Upcoming:      make([]UpcomingDTO, 0, len(view.Upcoming)),
		UpcomingCount: len(view.Upcoming),
	}

	for _, bucket := range view.Buckets {
		bucketDTO := DateBucketDTO{
			Date:   bucket.Date.Format("2006-01-02"),
			Events: make([]AgendaEventDTO, 0, len(bucket.Events)),
		}
		for _, e := range bucket.Events {
			bucketDTO.Events = append(bucketDTO.Events, agendaEventToDTO(e))
		}
		dto.Buckets = append(dto.Buckets, bucketDTO)
	}

	for _, u := range view.Upcoming {
		dto.Upcoming = append(dto.Upcoming, UpcomingDTO{
			Event:          agendaEventToDTO(u.Event),
			DaysUntilStart: u.DaysUntilStart,
			Countdown:      u.Countdown(),
		})
	}

	return dto
}

func agendaEventToDTO(e event.Event) AgendaEventDTO {
	return AgendaEventDTO{
		UID:         e.UID.String(),
		Name:        e.Name,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		FeedID:      e.FeedID,
	}
}
