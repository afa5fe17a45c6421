// Package postgres persists lifecycle and governance events in an
// append-only table. It is the event sink when no broker is configured.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "tradeinvoice/pkg/platform/audit"
	txcontext "tradeinvoice/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Migrate creates the events table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}

// Store implements audit.Store.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) queryer(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts the event. Redelivery of an event with the same ID is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID, err := eventUUID(event.ID)
	if err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	var invoiceID *int64
	if event.InvoiceID != 0 {
		v := int64(event.InvoiceID)
		invoiceID = &v
	}

	_, err = s.queryer(ctx).ExecContext(ctx, `
		INSERT INTO invoice_events (
			id, category, action, occurred_at, actor_id, invoice_id, subject, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		eventID,
		string(category),
		event.Action,
		event.Timestamp.UTC(),
		event.ActorID,
		invoiceID,
		event.Subject,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert %s event: %w", event.Action, err)
	}
	return nil
}

func eventUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("event id %q is not a uuid: %w", raw, err)
	}
	return parsed, nil
}

const selectEvents = `
	SELECT id, category, action, occurred_at, actor_id, invoice_id, subject, request_id
	FROM invoice_events`

// ListByInvoice returns the history of one invoice, oldest first.
func (s *Store) ListByInvoice(ctx context.Context, invoiceID uint64) ([]audit.Event, error) {
	rows, err := s.queryer(ctx).QueryContext(ctx,
		selectEvents+` WHERE invoice_id = $1 ORDER BY occurred_at ASC, id ASC`,
		int64(invoiceID),
	)
	if err != nil {
		return nil, fmt.Errorf("query invoice events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the newest events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.queryer(ctx).QueryContext(ctx,
		selectEvents+` ORDER BY occurred_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event     audit.Event
			eventID   uuid.UUID
			category  string
			invoiceID sql.NullInt64
		)
		if err := rows.Scan(
			&eventID,
			&category,
			&event.Action,
			&event.Timestamp,
			&event.ActorID,
			&invoiceID,
			&event.Subject,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.ID = eventID.String()
		event.Category = audit.EventCategory(category)
		if invoiceID.Valid {
			event.InvoiceID = uint64(invoiceID.Int64)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
