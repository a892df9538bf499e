package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a single occurrence belonging to one feed. StartTime is always a
// full timestamp; EndTime is always populated after normalization and equals
// StartTime when the source carried no end.
type Event struct {
	ID          int
	UID         uuid.UUID
	Name        string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	FeedID      int
}
