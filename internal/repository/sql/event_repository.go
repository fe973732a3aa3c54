package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// EventRepository implements repository.EventRepository, the outbox table.
type EventRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event into the database.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	event.InitMeta()

	query := `INSERT INTO events (id, event_type, event_data, status, created_at, processed_at) 
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query,
		event.ID, event.EventType, []byte(event.EventData), string(event.Status), event.CreatedAt, event.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// ListPending returns up to limit pending events, oldest first.
func (r *EventRepository) ListPending(ctx context.Context, limit int) ([]*model.Event, error) {
	query := `SELECT id, event_type, event_data, status, created_at, processed_at 
	          FROM events 
	          WHERE status = $1 
	          ORDER BY created_at ASC 
	          LIMIT $2`

	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}

	var events []*model.Event
	err := queryRows(ctx, getExecutor(r.db, r.txn), query, []interface{}{string(model.EventStatusPending), limit}, func(rows rowScanner) error {
		var (
			event       model.Event
			data        []byte
			status      string
			processedAt sql.NullTime
		)
		if err := rows.Scan(&event.ID, &event.EventType, &data, &status, &event.CreatedAt, &processedAt); err != nil {
			return err
		}
		event.EventData = json.RawMessage(data)
		event.Status = model.EventStatus(status)
		if processedAt.Valid {
			event.ProcessedAt = &processedAt.Time
		}
		events = append(events, &event)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return events, nil
}

// UpdateStatus updates the status and processed_at time of an event
func (r *EventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	query := `UPDATE events SET status = $1, processed_at = CURRENT_TIMESTAMP WHERE id = $2`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	return nil
}
