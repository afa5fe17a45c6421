package hashcache

import (
	"context"
	"errors"
	"log/slog"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	"tradeinvoice/pkg/platform/circuit"
)

// Guarded puts a circuit breaker in front of a cache. While the breaker is
// open, lookups report a miss and writes are skipped, so an unreachable
// Redis costs one trial call per cooldown instead of a timeout per request.
type Guarded struct {
	cache   ports.HashCache
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(cache ports.HashCache, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	return &Guarded{cache: cache, breaker: breaker, logger: logger}
}

func (g *Guarded) Get(ctx context.Context, hash models.ContentHash) (uint64, bool, error) {
	if !g.breaker.Allow() {
		return 0, false, nil
	}
	invoiceID, ok, err := g.cache.Get(ctx, hash)
	g.record(ctx, err)
	return invoiceID, ok, err
}

func (g *Guarded) Set(ctx context.Context, hash models.ContentHash, invoiceID uint64) error {
	if !g.breaker.Allow() {
		return nil
	}
	err := g.cache.Set(ctx, hash, invoiceID)
	g.record(ctx, err)
	return err
}

// callerGaveUp reports whether err comes from the caller's own context
// rather than from the cache.
func callerGaveUp(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (g *Guarded) record(ctx context.Context, err error) {
	if callerGaveUp(ctx, err) {
		return
	}
	var change circuit.StateChange
	if err == nil || errors.Is(err, ErrCorruptEntry) {
		_, change = g.breaker.RecordSuccess()
	} else {
		_, change = g.breaker.RecordFailure()
	}
	if g.logger == nil {
		return
	}
	switch {
	case change.Opened:
		g.logger.WarnContext(ctx, "hash cache circuit opened, serving lookups from the store",
			"breaker", g.breaker.Name(),
			"error", err,
		)
	case change.Closed:
		g.logger.InfoContext(ctx, "hash cache circuit closed", "breaker", g.breaker.Name())
	}
}
