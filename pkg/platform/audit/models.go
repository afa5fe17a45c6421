package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryLifecycle covers invoice records changing state. Escrow and
	// dispute collaborators subscribe to these.
	CategoryLifecycle EventCategory = "lifecycle"

	// CategoryGovernance covers changes to who controls the registry and
	// whether it accepts writes.
	CategoryGovernance EventCategory = "governance"
)

// Event is emitted after a registry mutation commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// ActorID is the caller identity that performed the action.
	ActorID string
	// InvoiceID is zero for governance events.
	InvoiceID uint64
	// Subject is the identity or value the action was applied to, e.g. the
	// new admin, the new status or the content hash.
	Subject   string
	RequestID string
	ClientIP  string
	UserAgent string
}

type AuditEvent string

const (
	EventInvoiceCreated       AuditEvent = "invoice_created"
	EventInvoiceStatusUpdated AuditEvent = "invoice_status_updated"
	EventInvoiceVerified      AuditEvent = "invoice_verified"
	EventInvoiceCancelled     AuditEvent = "invoice_cancelled"

	EventAdminTransferred AuditEvent = "admin_transferred"
	EventOracleChanged    AuditEvent = "oracle_changed"
	EventRegistryPaused   AuditEvent = "registry_paused"
	EventRegistryUnpaused AuditEvent = "registry_unpaused"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventInvoiceCreated:       CategoryLifecycle,
	EventInvoiceStatusUpdated: CategoryLifecycle,
	EventInvoiceVerified:      CategoryLifecycle,
	EventInvoiceCancelled:     CategoryLifecycle,

	EventAdminTransferred: CategoryGovernance,
	EventOracleChanged:    CategoryGovernance,
	EventRegistryPaused:   CategoryGovernance,
	EventRegistryUnpaused: CategoryGovernance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryLifecycle.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryLifecycle
}

// Store is a sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
