package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dispatchly/smartsched/internal/db"
	"github.com/dispatchly/smartsched/internal/domain"
)

// SQLiteEventLogRepo implements EventLogRepo using a SQLite database. The log
// is append-only; entries are never updated or deleted.
type SQLiteEventLogRepo struct {
	db db.DBTX
}

// NewSQLiteEventLogRepo creates a new SQLiteEventLogRepo.
func NewSQLiteEventLogRepo(conn db.DBTX) *SQLiteEventLogRepo {
	return &SQLiteEventLogRepo{db: conn}
}

func (r *SQLiteEventLogRepo) Append(ctx context.Context, e *domain.EventLogEntry) error {
	publishedToJSON, err := marshalJSON("published_to", e.PublishedTo)
	if err != nil {
		return err
	}
	query := `INSERT INTO event_log (id, event_type, payload_json, published_at, published_to)
		VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.EventType,
		e.PayloadJSON,
		e.PublishedAt.Format(time.RFC3339),
		publishedToJSON,
	)
	if err != nil {
		return fmt.Errorf("appending event log entry: %w", err)
	}
	return nil
}

func (r *SQLiteEventLogRepo) ListRecent(ctx context.Context, eventType string, limit int) ([]*domain.EventLogEntry, error) {
	query := `SELECT id, event_type, payload_json, published_at, published_to
		FROM event_log`
	var args []any
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, eventType)
	}
	query += ` ORDER BY published_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing event log: %w", err)
	}
	defer rows.Close()

	var out []*domain.EventLogEntry
	for rows.Next() {
		var e domain.EventLogEntry
		var publishedAtStr, publishedToJSON string
		if err := rows.Scan(&e.ID, &e.EventType, &e.PayloadJSON, &publishedAtStr, &publishedToJSON); err != nil {
			return nil, fmt.Errorf("scanning event log row: %w", err)
		}
		if e.PublishedAt, err = time.Parse(time.RFC3339, publishedAtStr); err != nil {
			return nil, fmt.Errorf("parsing published_at: %w", err)
		}
		if err := unmarshalJSON("published_to", publishedToJSON, &e.PublishedTo); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event log: %w", err)
	}
	return out, nil
}
