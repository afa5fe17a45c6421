package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
	"tradeinvoice/pkg/platform/audit"
	"tradeinvoice/pkg/platform/sentinel"
)

// CreateInvoice registers a new pending, unverified invoice issued by caller
// and returns its id. Ids are allocated 1, 2, 3, ... and a failed creation
// consumes none.
//
// Checks run in order: pause switch, recipient, amount, due date, currency,
// description, then hash uniqueness.
func (s *Service) CreateInvoice(ctx context.Context, caller id.Identity, req models.CreateInvoiceRequest) (_ uint64, err error) {
	ctx, finish := s.start(ctx, opCreateInvoice, attribute.String("invoice.hash", req.Hash.String()))
	defer func() { finish(err) }()

	req.Normalize()
	now := s.clock.Height(ctx)

	change, err := s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := ensureNotPaused(state); err != nil {
			return models.Change{}, err
		}
		if caller.IsNil() {
			return models.Change{}, dErrors.New(dErrors.CodeNotAuthorized, "issuer identity is required")
		}
		inv, err := models.NewInvoice(state.NextID(), caller, req, now)
		if err != nil {
			return models.Change{}, err
		}
		_, err = v.InvoiceIDByHash(ctx, inv.Hash)
		switch {
		case err == nil:
			return models.Change{}, dErrors.New(dErrors.CodeInvoiceExists, "an invoice with this content hash already exists")
		case !errors.Is(err, sentinel.ErrNotFound):
			return models.Change{}, err
		}
		return models.Change{Created: inv}, nil
	})
	if err != nil {
		return 0, translate(err, "failed to create invoice")
	}

	created := change.Created
	if s.metrics != nil {
		s.metrics.IncrementInvoicesCreated()
	}
	s.warmHashCache(ctx, created.Hash, created.ID)
	s.auditEmitter.emit(ctx, audit.Event{
		Action:    string(audit.EventInvoiceCreated),
		ActorID:   caller.String(),
		InvoiceID: created.ID,
		Subject:   created.Recipient.String(),
	})
	return created.ID, nil
}

// UpdateStatus sets any lifecycle status on an invoice the caller issued.
// Any transition is allowed, including Cancelled back to Pending.
//
// Checks run in order: pause switch, status value, existence, issuer.
func (s *Service) UpdateStatus(ctx context.Context, caller id.Identity, invoiceID uint64, status models.Status) (_ *models.Invoice, err error) {
	ctx, finish := s.start(ctx, opUpdateStatus, attribute.Int64("invoice.id", int64(invoiceID)))
	defer func() { finish(err) }()

	change, err := s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := ensureNotPaused(state); err != nil {
			return models.Change{}, err
		}
		if !status.IsValid() {
			return models.Change{}, dErrors.New(dErrors.CodeInvalidStatus, "unknown invoice status")
		}
		inv, err := v.Invoice(ctx, invoiceID)
		if err != nil {
			return models.Change{}, err
		}
		if err := s.policy.RequireIssuer(inv, caller); err != nil {
			return models.Change{}, err
		}
		inv.Status = status
		return models.Change{Updated: inv}, nil
	})
	if err != nil {
		return nil, translate(err, "failed to update invoice status")
	}

	s.auditEmitter.emit(ctx, audit.Event{
		Action:    string(audit.EventInvoiceStatusUpdated),
		ActorID:   caller.String(),
		InvoiceID: invoiceID,
		Subject:   status.String(),
	})
	return change.Updated, nil
}

// VerifyInvoice latches the verified flag. Only the oracle may call it and
// only once per invoice.
//
// Checks run in order: pause switch, oracle, existence, not yet verified.
func (s *Service) VerifyInvoice(ctx context.Context, caller id.Identity, invoiceID uint64) (_ *models.Invoice, err error) {
	ctx, finish := s.start(ctx, opVerifyInvoice, attribute.Int64("invoice.id", int64(invoiceID)))
	defer func() { finish(err) }()

	change, err := s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := ensureNotPaused(state); err != nil {
			return models.Change{}, err
		}
		if err := s.policy.RequireOracle(state, caller); err != nil {
			return models.Change{}, err
		}
		inv, err := v.Invoice(ctx, invoiceID)
		if err != nil {
			return models.Change{}, err
		}
		if err := inv.CanVerify(); err != nil {
			return models.Change{}, err
		}
		inv.Verified = true
		return models.Change{Updated: inv}, nil
	})
	if err != nil {
		return nil, translate(err, "failed to verify invoice")
	}

	s.auditEmitter.emit(ctx, audit.Event{
		Action:    string(audit.EventInvoiceVerified),
		ActorID:   caller.String(),
		InvoiceID: invoiceID,
	})
	return change.Updated, nil
}

// CancelInvoice moves a pending invoice the caller issued to Cancelled.
//
// Checks run in order: pause switch, existence, issuer, pending status.
func (s *Service) CancelInvoice(ctx context.Context, caller id.Identity, invoiceID uint64) (_ *models.Invoice, err error) {
	ctx, finish := s.start(ctx, opCancelInvoice, attribute.Int64("invoice.id", int64(invoiceID)))
	defer func() { finish(err) }()

	change, err := s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := ensureNotPaused(state); err != nil {
			return models.Change{}, err
		}
		inv, err := v.Invoice(ctx, invoiceID)
		if err != nil {
			return models.Change{}, err
		}
		if err := s.policy.RequireIssuer(inv, caller); err != nil {
			return models.Change{}, err
		}
		if err := inv.CanCancel(); err != nil {
			return models.Change{}, err
		}
		inv.Status = models.StatusCancelled
		return models.Change{Updated: inv}, nil
	})
	if err != nil {
		return nil, translate(err, "failed to cancel invoice")
	}

	s.auditEmitter.emit(ctx, audit.Event{
		Action:    string(audit.EventInvoiceCancelled),
		ActorID:   caller.String(),
		InvoiceID: invoiceID,
	})
	return change.Updated, nil
}
