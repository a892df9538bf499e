package event

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

type StubEventRepository struct {
	nextId int
	Events []Event

	// FailOnInsert makes StoreEvent return an error after the given number
	// of successful inserts, to exercise transaction rollback paths.
	FailOnInsert int

	inserts int
	inTx    bool
}

func NewStubEventRepo() *StubEventRepository {
	return &StubEventRepository{FailOnInsert: -1}
}

func (s *StubEventRepository) WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error {
	// Simulate transactional semantics by operating on a copy and swapping
	// it in only when fn succeeds.
	snapshot := make([]Event, len(s.Events))
	copy(snapshot, s.Events)

	s.inTx = true
	err := fn(s)
	s.inTx = false
	if err != nil {
		s.Events = snapshot
		return err
	}
	return nil
}

func (s *StubEventRepository) StoreEvent(ctx context.Context, event Event) (Event, error) {
	if s.FailOnInsert >= 0 && s.inserts >= s.FailOnInsert {
		return Event{}, errors.New("stub insert failure")
	}
	s.inserts++
	s.nextId++
	event.ID = s.nextId
	if event.UID == uuid.Nil {
		event.UID = uuid.New()
	}
	s.Events = append(s.Events, event)
	return event, nil
}

func (s *StubEventRepository) GetEventByUID(ctx context.Context, uid uuid.UUID) (*Event, error) {
	for i := range s.Events {
		if s.Events[i].UID == uid {
			e := s.Events[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *StubEventRepository) GetEventsByFeed(ctx context.Context, feedId int) ([]Event, error) {
	events := make([]Event, 0)
	for _, e := range s.Events {
		if e.FeedID == feedId {
			events = append(events, e)
		}
	}
	sortByStart(events)
	return events, nil
}

func (s *StubEventRepository) DeleteEventsByFeed(ctx context.Context, feedId int) error {
	kept := s.Events[:0]
	for _, e := range s.Events {
		if e.FeedID != feedId {
			kept = append(kept, e)
		}
	}
	s.Events = kept
	return nil
}

func (s *StubEventRepository) DeleteEvent(ctx context.Context, uid uuid.UUID) (bool, error) {
	for i := range s.Events {
		if s.Events[i].UID == uid {
			s.Events = append(s.Events[:i], s.Events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *StubEventRepository) GetEventsEndingOnOrAfter(ctx context.Context, from time.Time) ([]Event, error) {
	events := make([]Event, 0)
	for _, e := range s.Events {
		if !e.EndTime.Before(from) {
			events = append(events, e)
		}
	}
	sortByStart(events)
	return events, nil
}

func (s *StubEventRepository) Cleanup() {
	s.Events = nil
	s.inserts = 0
	s.FailOnInsert = -1
}

func sortByStart(events []Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
}
