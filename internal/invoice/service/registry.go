package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
	"tradeinvoice/pkg/platform/audit"
)

// TransferAdmin hands the administrator role to newAdmin.
// Fails not_authorized unless caller is the admin, then zero_address if
// newAdmin is absent. Not gated by the pause switch.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin id.Identity) (err error) {
	ctx, finish := s.start(ctx, opTransferAdmin)
	defer func() { finish(err) }()

	_, err = s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := s.policy.RequireAdmin(state, caller); err != nil {
			return models.Change{}, err
		}
		if newAdmin.IsNil() {
			return models.Change{}, dErrors.New(dErrors.CodeZeroAddress, "new admin is required")
		}
		return models.Change{Admin: &newAdmin}, nil
	})
	if err != nil {
		return translate(err, "failed to transfer admin")
	}

	s.auditEmitter.emit(ctx, audit.Event{
		Action:  string(audit.EventAdminTransferred),
		ActorID: caller.String(),
		Subject: newAdmin.String(),
	})
	return nil
}

// SetOracle replaces the identity trusted to verify invoices.
// Same authorization and validation shape as TransferAdmin.
func (s *Service) SetOracle(ctx context.Context, caller, newOracle id.Identity) (err error) {
	ctx, finish := s.start(ctx, opSetOracle)
	defer func() { finish(err) }()

	_, err = s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := s.policy.RequireAdmin(state, caller); err != nil {
			return models.Change{}, err
		}
		if newOracle.IsNil() {
			return models.Change{}, dErrors.New(dErrors.CodeZeroAddress, "new oracle is required")
		}
		return models.Change{Oracle: &newOracle}, nil
	})
	if err != nil {
		return translate(err, "failed to set oracle")
	}

	s.auditEmitter.emit(ctx, audit.Event{
		Action:  string(audit.EventOracleChanged),
		ActorID: caller.String(),
		Subject: newOracle.String(),
	})
	return nil
}

// SetPaused engages or releases the circuit breaker and returns the new value.
func (s *Service) SetPaused(ctx context.Context, caller id.Identity, paused bool) (_ bool, err error) {
	ctx, finish := s.start(ctx, opSetPaused, attribute.Bool("registry.paused", paused))
	defer func() { finish(err) }()

	_, err = s.store.Execute(ctx, func(v ports.View) (models.Change, error) {
		state, err := v.State(ctx)
		if err != nil {
			return models.Change{}, err
		}
		if err := s.policy.RequireAdmin(state, caller); err != nil {
			return models.Change{}, err
		}
		return models.Change{Paused: &paused}, nil
	})
	if err != nil {
		return false, translate(err, "failed to set pause switch")
	}

	action := audit.EventRegistryUnpaused
	if paused {
		action = audit.EventRegistryPaused
	}
	s.auditEmitter.emit(ctx, audit.Event{
		Action:  string(action),
		ActorID: caller.String(),
	})
	return paused, nil
}
