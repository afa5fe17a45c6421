package service

import (
	"context"
	"log/slog"

	"tradeinvoice/internal/invoice/ports"
	"tradeinvoice/pkg/platform/audit"
)

// auditEmitter writes the audit log line and forwards the event. Both are
// fail-open: the mutation has already committed.
type auditEmitter struct {
	logger    *slog.Logger
	publisher ports.AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher ports.AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emit(ctx context.Context, event audit.Event) {
	if e.logger != nil {
		args := []any{
			"log_type", "audit",
			"action", event.Action,
			"actor_id", event.ActorID,
		}
		if event.InvoiceID != 0 {
			args = append(args, "invoice_id", event.InvoiceID)
		}
		if event.Subject != "" {
			args = append(args, "subject", event.Subject)
		}
		e.logger.InfoContext(ctx, event.Action, args...)
	}
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Emit(ctx, event); err != nil && e.logger != nil {
		e.logger.ErrorContext(ctx, "failed to publish audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
