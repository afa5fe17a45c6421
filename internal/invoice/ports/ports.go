// Package ports declares what the invoice registry needs from the outside:
// a serialized store, an optional hash index cache, a ledger clock and an
// audit sink.
package ports

import (
	"context"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/pkg/platform/audit"
	"tradeinvoice/pkg/requestcontext"
)

// View is the read side a Decide callback sees while the store holds its
// write lock. Lookups of absent keys return sentinel.ErrNotFound.
type View interface {
	State(ctx context.Context) (models.RegistryState, error)
	Invoice(ctx context.Context, invoiceID uint64) (*models.Invoice, error)
	InvoiceIDByHash(ctx context.Context, hash models.ContentHash) (uint64, error)
}

// Decide inspects a View and returns the writes to commit. It must not
// mutate anything itself; returning an error commits nothing.
type Decide func(v View) (models.Change, error)

// Store persists registry state, invoices and the hash index.
//
// Execute is the single serialization point: no two Execute calls overlap,
// and the returned Change has been applied in full when err is nil. Errors
// returned by decide are passed through unwrapped.
type Store interface {
	View
	Execute(ctx context.Context, decide Decide) (models.Change, error)
}

// HashCache is a read-through cache of the hash index. Entries never change
// once written, so they never need invalidation.
type HashCache interface {
	Get(ctx context.Context, hash models.ContentHash) (uint64, bool, error)
	Set(ctx context.Context, hash models.ContentHash, invoiceID uint64) error
}

// Clock yields the ledger height used for issue and due dates.
type Clock interface {
	Height(ctx context.Context) uint64
}

// AuditPublisher receives events for committed registry mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// UnixClock reports the request-scoped time as Unix seconds.
type UnixClock struct{}

func (UnixClock) Height(ctx context.Context) uint64 {
	sec := requestcontext.Now(ctx).Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

// FixedClock always reports the same height. Useful for tests and replays.
type FixedClock uint64

func (c FixedClock) Height(context.Context) uint64 {
	return uint64(c)
}
