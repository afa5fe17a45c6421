// Package policy decides who may perform privileged registry operations.
//
// The registry asks an Authorizer; it never compares identities itself.
// RolePolicy is the default: a single administrator, a single oracle, and
// the issuer of each invoice.
package policy

import (
	"tradeinvoice/internal/invoice/models"
	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
)

// Authorizer checks a caller against a role. Each method returns nil or a
// not_authorized error.
type Authorizer interface {
	RequireAdmin(state models.RegistryState, caller id.Identity) error
	RequireOracle(state models.RegistryState, caller id.Identity) error
	RequireIssuer(invoice *models.Invoice, caller id.Identity) error
}

// RolePolicy compares the caller with the role fields held in registry state.
type RolePolicy struct{}

func (RolePolicy) RequireAdmin(state models.RegistryState, caller id.Identity) error {
	if caller.IsNil() || caller != state.Admin {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the administrator")
	}
	return nil
}

func (RolePolicy) RequireOracle(state models.RegistryState, caller id.Identity) error {
	if caller.IsNil() || caller != state.Oracle {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the oracle")
	}
	return nil
}

func (RolePolicy) RequireIssuer(invoice *models.Invoice, caller id.Identity) error {
	if !invoice.IsIssuedBy(caller) {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not the invoice issuer")
	}
	return nil
}
