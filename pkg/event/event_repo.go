package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type EventRepository interface {
	WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error
	StoreEvent(ctx context.Context, event Event) (Event, error)
	GetEventByUID(ctx context.Context, uid uuid.UUID) (*Event, error)
	GetEventsByFeed(ctx context.Context, feedId int) ([]Event, error)
	DeleteEventsByFeed(ctx context.Context, feedId int) error
	DeleteEvent(ctx context.Context, uid uuid.UUID) (bool, error)
	// GetEventsEndingOnOrAfter returns every event whose end time is not
	// before the given instant, ordered by start time ascending. The agenda
	// view reads its snapshot through this single query.
	GetEventsEndingOnOrAfter(ctx context.Context, from time.Time) ([]Event, error)
}

type EventRepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewEventRepo(db *sql.DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *EventRepositoryImpl) getQueryer() interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// WithTransaction runs fn against a repository bound to a single transaction.
// The transaction commits only when fn returns nil; any error rolls the whole
// unit of work back. The reconciler leans on this so a failed sync never
// leaves a feed half-replaced.
func (r *EventRepositoryImpl) WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &EventRepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// StoreEvent stores a new Event to the database and assigns its UID.
func (r *EventRepositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	query := "INSERT INTO event (uid, name, description, start_time, end_time, feed_id) VALUES (?, ?, ?, ?, ?, ?)"

	stmt, err := r.getQueryer().PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Event{}, err
	}
	defer stmt.Close()

	if event.UID == uuid.Nil {
		event.UID = uuid.New()
	}

	result, err := stmt.ExecContext(ctx, event.UID.String(), event.Name, event.Description,
		event.StartTime.Unix(), event.EndTime.Unix(), event.FeedID)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Event{}, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return Event{}, err
	}

	event.ID = int(lastInsertID)

	return event, nil
}

func (r *EventRepositoryImpl) GetEventByUID(ctx context.Context, uid uuid.UUID) (*Event, error) {
	query := "SELECT id, uid, name, description, start_time, end_time, feed_id FROM event WHERE uid = ?"

	row := r.getQueryer().QueryRowContext(ctx, query, uid.String())

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to get event %s: %w", uid, err)
		log.Error(err)
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) GetEventsByFeed(ctx context.Context, feedId int) ([]Event, error) {
	query := "SELECT id, uid, name, description, start_time, end_time, feed_id FROM event WHERE feed_id = ? ORDER BY start_time"
	return r.queryEvents(ctx, query, feedId)
}

func (r *EventRepositoryImpl) DeleteEventsByFeed(ctx context.Context, feedId int) error {
	query := "DELETE FROM event WHERE feed_id = ?"
	if _, err := r.getQueryer().ExecContext(ctx, query, feedId); err != nil {
		err := fmt.Errorf("could not delete events of feed %d: %w", feedId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *EventRepositoryImpl) DeleteEvent(ctx context.Context, uid uuid.UUID) (bool, error) {
	query := "DELETE FROM event WHERE uid = ?"
	result, err := r.getQueryer().ExecContext(ctx, query, uid.String())
	if err != nil {
		err := fmt.Errorf("could not delete event %s: %w", uid, err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *EventRepositoryImpl) GetEventsEndingOnOrAfter(ctx context.Context, from time.Time) ([]Event, error) {
	query := "SELECT id, uid, name, description, start_time, end_time, feed_id FROM event WHERE end_time >= ? ORDER BY start_time"
	return r.queryEvents(ctx, query, from.Unix())
}

func (r *EventRepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan event row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var event Event
	var uidString string
	var description sql.NullString
	var startUnix, endUnix int64
	if err := row.Scan(&event.ID, &uidString, &event.Name, &description, &startUnix, &endUnix, &event.FeedID); err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(uidString)
	if err != nil {
		return nil, fmt.Errorf("could not parse event uid %q: %w", uidString, err)
	}
	event.UID = uid
	if description.Valid {
		event.Description = description.String
	}
	event.StartTime = time.Unix(startUnix, 0)
	event.EndTime = time.Unix(endUnix, 0)
	return &event, nil
}
