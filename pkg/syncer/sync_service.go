package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/m-J-K-b/chronoscope/pkg/event"
	"github.com/m-J-K-b/chronoscope/pkg/feed"
	"github.com/m-J-K-b/chronoscope/pkg/ics"
	log "github.com/sirupsen/logrus"
)

// ErrFeedNotSyncable marks an attempt to synchronize an owned feed, which
// has no remote source by definition.
var ErrFeedNotSyncable = errors.New("feed has no source URL to synchronize from")

// Outcome is the ephemeral result of one synchronization attempt for one
// feed. It is reported to the caller and never persisted.
type Outcome struct {
	FeedID       int
	FeedName     string
	EventsStored int
	Err          error
}

// Success reports whether the sync completed; a successful sync with zero
// events is still a success.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// DocumentFetcher retrieves the raw bytes of a feed document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type SyncService interface {
	SynchronizeFeed(ctx context.Context, feedId int) Outcome
	SynchronizeAll(ctx context.Context) ([]Outcome, error)
}

type SyncServiceImpl struct {
	feedService feed.FeedService
	eventRepo   event.EventRepository
	fetcher     DocumentFetcher

	// feedLocks serializes concurrent synchronizations of the same feed.
	// Independent feeds may still sync in parallel.
	mu        sync.Mutex
	feedLocks map[int]*sync.Mutex
}

func NewSyncService(feedService feed.FeedService, eventRepo event.EventRepository, fetcher DocumentFetcher) *SyncServiceImpl {
	return &SyncServiceImpl{
		feedService: feedService,
		eventRepo:   eventRepo,
		fetcher:     fetcher,
		feedLocks:   make(map[int]*sync.Mutex),
	}
}

// SynchronizeFeed fetches, parses, normalizes and reconciles one feed. A
// fetch or parse failure leaves the feed's previously stored events
// untouched; a successful sync replaces them entirely, even with an empty
// set, because a feed genuinely emptied upstream should show empty locally.
func (s *SyncServiceImpl) SynchronizeFeed(ctx context.Context, feedId int) Outcome {
	f, err := s.feedService.GetFeed(ctx, feedId)
	if err != nil {
		return Outcome{FeedID: feedId, Err: err}
	}
	if f.Owned {
		return Outcome{FeedID: f.ID, FeedName: f.Name, Err: ErrFeedNotSyncable}
	}

	lock := s.lockForFeed(f.ID)
	lock.Lock()
	defer lock.Unlock()

	return s.synchronize(ctx, f)
}

// SynchronizeAll resynchronizes every imported feed sequentially. A failing
// feed never aborts the pass; its outcome simply reports the failure.
func (s *SyncServiceImpl) SynchronizeAll(ctx context.Context) ([]Outcome, error) {
	feeds, err := s.feedService.GetImportedFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list imported feeds: %w", err)
	}

	outcomes := make([]Outcome, 0, len(feeds))
	for _, f := range feeds {
		lock := s.lockForFeed(f.ID)
		lock.Lock()
		outcome := s.synchronize(ctx, f)
		lock.Unlock()

		if !outcome.Success() {
			log.Warnf("Feed %q couldn't be processed: %v", f.Name, outcome.Err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *SyncServiceImpl) synchronize(ctx context.Context, f feed.Feed) Outcome {
	outcome := Outcome{FeedID: f.ID, FeedName: f.Name}

	body, err := s.fetcher.Fetch(ctx, f.SourceURL)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	components, err := ics.Parse(f.SourceURL, body)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	normalized := make([]event.Event, 0, len(components))
	for _, rc := range components {
		e, err := Normalize(rc, f.ID)
		if err != nil {
			log.Warn("Skipping event with no start date.")
			continue
		}
		normalized = append(normalized, e)
	}

	stored, err := event.ReplaceFeedEvents(ctx, s.eventRepo, f.ID, normalized)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to reconcile feed %q: %w", f.Name, err)
		return outcome
	}

	outcome.EventsStored = stored
	log.Infof("Synchronized feed %q: %d events stored", f.Name, stored)
	return outcome
}

func (s *SyncServiceImpl) lockForFeed(feedId int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.feedLocks[feedId]
	if !ok {
		lock = &sync.Mutex{}
		s.feedLocks[feedId] = lock
	}
	return lock
}
