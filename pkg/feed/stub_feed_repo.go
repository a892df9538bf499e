package feed

import (
	"context"
	"sort"
)

type StubFeedRepo struct {
	nextId int
	data   map[int]Feed
	// DeletedEvents records feed ids whose events were dropped via
	// DeleteFeedWithEvents, for assertions in tests.
	DeletedEvents []int
}

func NewStubFeedRepo() *StubFeedRepo {
	return &StubFeedRepo{nextId: 0, data: map[int]Feed{}}
}

func (s *StubFeedRepo) StoreFeed(ctx context.Context, feed Feed) (Feed, error) {
	s.nextId++
	feed.ID = s.nextId
	s.data[feed.ID] = feed
	return feed, nil
}

func (s *StubFeedRepo) GetFeed(ctx context.Context, feedId int) (*Feed, error) {
	feed, ok := s.data[feedId]
	if !ok {
		return nil, nil
	}
	return &feed, nil
}

func (s *StubFeedRepo) GetAllFeeds(ctx context.Context) ([]Feed, error) {
	return s.sortedFeeds(func(Feed) bool { return true }), nil
}

func (s *StubFeedRepo) GetImportedFeeds(ctx context.Context) ([]Feed, error) {
	return s.sortedFeeds(func(f Feed) bool { return !f.Owned }), nil
}

func (s *StubFeedRepo) FindFeed(ctx context.Context, name string, sourceURL string) (*Feed, error) {
	for _, f := range s.data {
		if f.Name != name {
			continue
		}
		if sourceURL != "" && f.SourceURL != sourceURL {
			continue
		}
		return &f, nil
	}
	return nil, nil
}

func (s *StubFeedRepo) DeleteFeedWithEvents(ctx context.Context, feedId int) (bool, error) {
	if _, ok := s.data[feedId]; !ok {
		return false, nil
	}
	delete(s.data, feedId)
	s.DeletedEvents = append(s.DeletedEvents, feedId)
	return true, nil
}

func (s *StubFeedRepo) sortedFeeds(keep func(Feed) bool) []Feed {
	feeds := make([]Feed, 0, len(s.data))
	for _, f := range s.data {
		if keep(f) {
			feeds = append(feeds, f)
		}
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Name < feeds[j].Name })
	return feeds
}

func (s *StubFeedRepo) Cleanup() {
	s.data = map[int]Feed{}
	s.DeletedEvents = nil
}
