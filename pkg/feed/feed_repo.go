package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type FeedRepository interface {
	StoreFeed(ctx context.Context, feed Feed) (Feed, error)
	GetFeed(ctx context.Context, feedId int) (*Feed, error)
	GetAllFeeds(ctx context.Context) ([]Feed, error)
	GetImportedFeeds(ctx context.Context) ([]Feed, error)
	FindFeed(ctx context.Context, name string, sourceURL string) (*Feed, error)
	DeleteFeedWithEvents(ctx context.Context, feedId int) (bool, error)
}

type FeedRepositoryImpl struct {
	db *sql.DB
}

func NewFeedRepo(db *sql.DB) *FeedRepositoryImpl {
	return &FeedRepositoryImpl{db: db}
}

// StoreFeed stores a new Feed to the database
func (r *FeedRepositoryImpl) StoreFeed(ctx context.Context, feed Feed) (Feed, error) {
	query := "INSERT INTO feed (name, source_url, owned) VALUES (?, ?, ?)"

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Feed{}, err
	}
	defer stmt.Close()

	var sourceURL *string = nil
	if feed.SourceURL != "" {
		sourceURL = &feed.SourceURL
	}
	result, err := stmt.ExecContext(ctx, feed.Name, sourceURL, feed.Owned)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Feed{}, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return Feed{}, err
	}

	feed.ID = int(lastInsertID)

	return feed, nil
}

func (r *FeedRepositoryImpl) GetFeed(ctx context.Context, feedId int) (*Feed, error) {
	query := "SELECT id, name, source_url, owned FROM feed WHERE id = ?"

	row := r.db.QueryRowContext(ctx, query, feedId)

	feed, err := scanFeed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to get feed %d: %w", feedId, err)
		log.Error(err)
		return nil, err
	}
	return feed, nil
}

func (r *FeedRepositoryImpl) GetAllFeeds(ctx context.Context) ([]Feed, error) {
	query := "SELECT id, name, source_url, owned FROM feed ORDER BY name"
	return r.queryFeeds(ctx, query)
}

// GetImportedFeeds returns the feeds backed by a remote URL, the only ones
// that participate in synchronization.
func (r *FeedRepositoryImpl) GetImportedFeeds(ctx context.Context) ([]Feed, error) {
	query := "SELECT id, name, source_url, owned FROM feed WHERE owned = FALSE ORDER BY name"
	return r.queryFeeds(ctx, query)
}

// FindFeed looks up a feed by name, and additionally by URL when one is given.
func (r *FeedRepositoryImpl) FindFeed(ctx context.Context, name string, sourceURL string) (*Feed, error) {
	query := "SELECT id, name, source_url, owned FROM feed WHERE name = ?"
	args := []interface{}{name}
	if sourceURL != "" {
		query += " AND source_url = ?"
		args = append(args, sourceURL)
	}
	query += " LIMIT 1"

	row := r.db.QueryRowContext(ctx, query, args...)

	feed, err := scanFeed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to find feed: %w", err)
		log.Error(err)
		return nil, err
	}
	return feed, nil
}

// DeleteFeedWithEvents removes a feed together with all events it owns.
// Both deletes run in one transaction so a failure leaves the aggregate intact.
func (r *FeedRepositoryImpl) DeleteFeedWithEvents(ctx context.Context, feedId int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM event WHERE feed_id = ?", feedId); err != nil {
		return false, fmt.Errorf("could not delete feed events: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM feed WHERE id = ?", feedId)
	if err != nil {
		return false, fmt.Errorf("could not delete feed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return affected > 0, nil
}

func (r *FeedRepositoryImpl) queryFeeds(ctx context.Context, query string) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	feeds := make([]Feed, 0)
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			err := fmt.Errorf("could not scan feed row: %w", err)
			log.Error(err)
			return nil, err
		}
		feeds = append(feeds, *feed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return feeds, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	var sourceURL sql.NullString
	if err := row.Scan(&feed.ID, &feed.Name, &sourceURL, &feed.Owned); err != nil {
		return nil, err
	}
	if sourceURL.Valid {
		feed.SourceURL = sourceURL.String
	}
	return &feed, nil
}
