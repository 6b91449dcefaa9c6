package eventstore

import (
	"context"
	"encoding/json"
	"fmt"

	"contest-platform/events"
	"contest-platform/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS contest_events (
		id          TEXT PRIMARY KEY,
		emitted_at  TIMESTAMPTZ NOT NULL,
		event_type  TEXT NOT NULL,
		payload     JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS contest_events_type_idx ON contest_events (event_type);
	CREATE INDEX IF NOT EXISTS contest_events_emitted_idx ON contest_events (emitted_at);
`

// PostgresStore persists the event stream for off-process consumers. The core
// never reads it back; losing the database loses history, not state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Save inserts one record. Duplicate ids are ignored so replays are harmless.
func (s *PostgresStore) Save(ctx context.Context, record events.Record) error {
	payload, err := json.Marshal(record.Event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO contest_events (id, emitted_at, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, record.ID, record.EmittedAt, record.Type, payload); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// StoredEvent is one persisted record as read back from the database.
type StoredEvent struct {
	ID        string          `json:"id"`
	EmittedAt string          `json:"emitted_at"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// ListByType returns recent events of one type, newest first.
func (s *PostgresStore) ListByType(ctx context.Context, eventType string, limit int) ([]StoredEvent, error) {
	query := `
		SELECT id, emitted_at::text, event_type, payload
		FROM contest_events
		WHERE event_type = $1
		ORDER BY emitted_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var ev StoredEvent
		if err := rows.Scan(&ev.ID, &ev.EmittedAt, &ev.Type, &ev.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Get returns one event by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (StoredEvent, error) {
	query := `
		SELECT id, emitted_at::text, event_type, payload
		FROM contest_events
		WHERE id = $1
	`
	var ev StoredEvent
	err := s.pool.QueryRow(ctx, query, id).Scan(&ev.ID, &ev.EmittedAt, &ev.Type, &ev.Payload)
	if err == pgx.ErrNoRows {
		return StoredEvent{}, fmt.Errorf("event not found: %s", id)
	}
	if err != nil {
		return StoredEvent{}, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

// Run drains a recorder subscription into the store until ctx is cancelled or
// the subscription closes. Persistence failures are logged and skipped; the
// stream must keep moving.
func (s *PostgresStore) Run(ctx context.Context, records <-chan events.Record) {
	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-records:
			if !ok {
				return
			}
			if err := s.Save(ctx, record); err != nil {
				logging.Error("Failed to persist event", logging.Events,
					"id", record.ID, "type", record.Type, "error", err)
			}
		}
	}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
