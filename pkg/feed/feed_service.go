package feed

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var (
	ErrFeedNotFound      = errors.New("feed not found")
	ErrFeedAlreadyExists = errors.New("feed already exists")
)

type FeedService interface {
	CreateFeed(ctx context.Context, name string, sourceURL string) (Feed, error)
	GetFeed(ctx context.Context, feedId int) (Feed, error)
	GetAllFeeds(ctx context.Context) ([]Feed, error)
	GetImportedFeeds(ctx context.Context) ([]Feed, error)
	DeleteFeed(ctx context.Context, feedId int) error
}

type FeedServiceImpl struct {
	repo FeedRepository
}

func NewFeedService(repo FeedRepository) *FeedServiceImpl {
	return &FeedServiceImpl{repo: repo}
}

// CreateFeed registers a new feed. A feed without a source URL is owned:
// its events are curated manually and it never takes part in a sync.
func (s *FeedServiceImpl) CreateFeed(ctx context.Context, name string, sourceURL string) (Feed, error) {
	existing, err := s.repo.FindFeed(ctx, name, sourceURL)
	if err != nil {
		return Feed{}, fmt.Errorf("failed to check for existing feed: %w", err)
	}
	if existing != nil {
		return Feed{}, ErrFeedAlreadyExists
	}

	feed := Feed{
		Name:      name,
		SourceURL: sourceURL,
		Owned:     sourceURL == "",
	}

	stored, err := s.repo.StoreFeed(ctx, feed)
	if err != nil {
		return Feed{}, fmt.Errorf("failed to store feed: %w", err)
	}
	log.Infof("Created feed %q (id=%d, owned=%v)", stored.Name, stored.ID, stored.Owned)
	return stored, nil
}

func (s *FeedServiceImpl) GetFeed(ctx context.Context, feedId int) (Feed, error) {
	feed, err := s.repo.GetFeed(ctx, feedId)
	if err != nil {
		return Feed{}, fmt.Errorf("failed to get feed: %w", err)
	}
	if feed == nil {
		return Feed{}, ErrFeedNotFound
	}
	return *feed, nil
}

func (s *FeedServiceImpl) GetAllFeeds(ctx context.Context) ([]Feed, error) {
	return s.repo.GetAllFeeds(ctx)
}

func (s *FeedServiceImpl) GetImportedFeeds(ctx context.Context) ([]Feed, error) {
	return s.repo.GetImportedFeeds(ctx)
}

// DeleteFeed removes the feed and every event belonging to it.
func (s *FeedServiceImpl) DeleteFeed(ctx context.Context, feedId int) error {
	deleted, err := s.repo.DeleteFeedWithEvents(ctx, feedId)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}
	if !deleted {
		return ErrFeedNotFound
	}
	log.Infof("Deleted feed %d with its events", feedId)
	return nil
}
