package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/m-J-K-b/chronoscope/internal/utils"
	"github.com/m-J-K-b/chronoscope/pkg/event"
)

type ViewService interface {
	GetView(ctx context.Context, referenceDate time.Time, feedFilter []int) (View, error)
}

type ViewServiceImpl struct {
	repo  event.EventRepository
	clock utils.Clock
}

func NewViewService(repo event.EventRepository, clock utils.Clock) *ViewServiceImpl {
	return &ViewServiceImpl{repo: repo, clock: clock}
}

// GetView reads a consistent snapshot of the stored events and derives the
// temporal view. A zero reference date means "today". The read is a single
// ordered query, so an in-flight reconciliation is never observed halfway.
func (s *ViewServiceImpl) GetView(ctx context.Context, referenceDate time.Time, feedFilter []int) (View, error) {
	if referenceDate.IsZero() {
		referenceDate = s.clock.Now()
	}
	referenceDate = truncateToDate(referenceDate)

	events, err := s.repo.GetEventsEndingOnOrAfter(ctx, referenceDate)
	if err != nil {
		return View{}, fmt.Errorf("failed to load events: %w", err)
	}

	return Build(events, referenceDate, feedFilter), nil
}
