// Package publisher delivers audit events to a Store, either synchronously
// or through a bounded buffer drained by worker.Worker.
//
// Emission is fail-open: a registry mutation has already committed by the
// time its event is emitted, so a full buffer drops the event and counts it
// instead of blocking or failing the caller.
package publisher

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	audit "tradeinvoice/pkg/platform/audit"
	"tradeinvoice/pkg/requestcontext"
)

// DropCounter is notified about events discarded because the buffer was full.
type DropCounter interface {
	IncAuditDropped()
}

// Publisher stamps events and hands them to the store.
type Publisher struct {
	store   audit.Store
	inbox   chan audit.Event
	logger  *slog.Logger
	dropped DropCounter
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches to buffered delivery. Events wait in a channel of
// the given size until a worker drains Inbox.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithDropCounter records dropped events.
func WithDropCounter(c DropCounter) Option {
	return func(p *Publisher) {
		p.dropped = c
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inbox exposes the buffered events for a worker. Nil in synchronous mode.
func (p *Publisher) Inbox() <-chan audit.Event {
	return p.inbox
}

// Emit fills in ID, timestamp, category and request metadata, then delivers
// or enqueues the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		if p.dropped != nil {
			p.dropped.IncAuditDropped()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"action", event.Action,
				"invoice_id", event.InvoiceID,
			)
		}
		return nil
	}
}
