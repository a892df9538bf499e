package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-J-K-b/chronoscope/internal/config"
	"github.com/m-J-K-b/chronoscope/internal/utils"
	"github.com/m-J-K-b/chronoscope/pkg/agenda"
	"github.com/m-J-K-b/chronoscope/pkg/event"
	"github.com/m-J-K-b/chronoscope/pkg/feed"
	"github.com/m-J-K-b/chronoscope/pkg/ics"
	"github.com/m-J-K-b/chronoscope/pkg/syncer"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	FeedRepo    feed.FeedRepository
	FeedService feed.FeedService
	FeedHandler *feed.FeedHandler

	EventRepo    event.EventRepository
	EventService event.EventService
	EventHandler *event.EventHandler

	Fetcher     *ics.Fetcher
	SyncService syncer.SyncService
	SyncHandler *syncer.SyncHandler

	AgendaService agenda.ViewService
	AgendaHandler *agenda.AgendaHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.FeedRepo = feed.NewFeedRepo(db)
	deps.FeedService = feed.NewFeedService(deps.FeedRepo)

	deps.EventRepo = event.NewEventRepo(db)
	deps.EventService = event.NewEventService(deps.EventRepo, deps.FeedService)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.Fetcher = ics.NewFetcher(time.Duration(cfg.Sync.FetchTimeoutSeconds) * time.Second)
	deps.SyncService = syncer.NewSyncService(deps.FeedService, deps.EventRepo, deps.Fetcher)
	deps.SyncHandler = syncer.NewSyncHandler(deps.SyncService)

	deps.FeedHandler = feed.NewFeedHandler(deps.FeedService, func(ctx context.Context, feedId int) (int, error) {
		outcome := deps.SyncService.SynchronizeFeed(ctx, feedId)
		return outcome.EventsStored, outcome.Err
	})

	deps.AgendaService = agenda.NewViewService(deps.EventRepo, deps.Clock)
	deps.AgendaHandler = agenda.NewAgendaHandler(deps.AgendaService)

	return deps
}
