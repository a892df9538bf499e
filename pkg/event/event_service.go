package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/m-J-K-b/chronoscope/pkg/feed"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEndBeforeStart  = errors.New("event end must not be earlier than its start")
	ErrFeedNotWritable = errors.New("events can only be added manually to owned feeds")
)

type EventService interface {
	AddEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, uid uuid.UUID) (Event, error)
	GetEventsByFeed(ctx context.Context, feedId int) ([]Event, error)
	DeleteEvent(ctx context.Context, uid uuid.UUID) error
}

type EventServiceImpl struct {
	repo        EventRepository
	feedService feed.FeedService
}

func NewEventService(repo EventRepository, feedService feed.FeedService) *EventServiceImpl {
	return &EventServiceImpl{repo: repo, feedService: feedService}
}

// AddEvent stores a manually entered event. Only owned feeds accept manual
// entries; imported feeds are populated exclusively by synchronization.
func (s *EventServiceImpl) AddEvent(ctx context.Context, event Event) (Event, error) {
	target, err := s.feedService.GetFeed(ctx, event.FeedID)
	if err != nil {
		return Event{}, fmt.Errorf("failed to resolve target feed: %w", err)
	}
	if !target.Owned {
		return Event{}, ErrFeedNotWritable
	}

	if event.EndTime.IsZero() {
		event.EndTime = event.StartTime
	}
	if event.EndTime.Before(event.StartTime) {
		return Event{}, ErrEndBeforeStart
	}

	stored, err := s.repo.StoreEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	log.Debugf("Stored manual event %q (uid=%s) in feed %d", stored.Name, stored.UID, stored.FeedID)
	return stored, nil
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, uid uuid.UUID) (Event, error) {
	event, err := s.repo.GetEventByUID(ctx, uid)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return Event{}, ErrEventNotFound
	}
	return *event, nil
}

func (s *EventServiceImpl) GetEventsByFeed(ctx context.Context, feedId int) ([]Event, error) {
	return s.repo.GetEventsByFeed(ctx, feedId)
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, uid uuid.UUID) error {
	deleted, err := s.repo.DeleteEvent(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if !deleted {
		return ErrEventNotFound
	}
	return nil
}

// ReplaceFeedEvents atomically swaps a feed's stored events for the freshly
// normalized set: delete all, insert all, commit only on full success. A
// valid empty set intentionally clears the feed.
func ReplaceFeedEvents(ctx context.Context, repo EventRepository, feedId int, events []Event) (int, error) {
	stored := 0
	err := repo.WithTransaction(ctx, func(txRepo EventRepository) error {
		if err := txRepo.DeleteEventsByFeed(ctx, feedId); err != nil {
			return fmt.Errorf("failed to clear feed events: %w", err)
		}
		for _, e := range events {
			e.FeedID = feedId
			if _, err := txRepo.StoreEvent(ctx, e); err != nil {
				return fmt.Errorf("failed to insert event %q: %w", e.Name, err)
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}
