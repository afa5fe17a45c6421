package service

import (
	"context"
	"errors"

	"tradeinvoice/internal/invoice/models"
	id "tradeinvoice/pkg/domain"
	"tradeinvoice/pkg/platform/sentinel"
)

// Reads take no caller and ignore the pause switch.

// GetInvoice returns the full record. Fails invoice_not_found for ids that
// were never allocated, including 0.
func (s *Service) GetInvoice(ctx context.Context, invoiceID uint64) (*models.Invoice, error) {
	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil {
		return nil, translate(err, "failed to load invoice")
	}
	return inv, nil
}

// GetInvoiceCount returns the number of invoices ever created, which is
// also the highest allocated id.
func (s *Service) GetInvoiceCount(ctx context.Context) (uint64, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return 0, err
	}
	return state.InvoiceCounter, nil
}

func (s *Service) GetAdmin(ctx context.Context) (id.Identity, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return "", err
	}
	return state.Admin, nil
}

func (s *Service) GetOracle(ctx context.Context) (id.Identity, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return "", err
	}
	return state.Oracle, nil
}

func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	state, err := s.GetState(ctx)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

// GetState returns one consistent snapshot of the registry singleton.
func (s *Service) GetState(ctx context.Context) (models.RegistryState, error) {
	state, err := s.store.State(ctx)
	if err != nil {
		return models.RegistryState{}, translate(err, "failed to load registry state")
	}
	return state, nil
}

// GetInvoiceByHash resolves a content hash to its invoice id. A cached id is
// only a hint: it is returned after the store confirms the invoice carries
// that hash. Fails invoice_not_found for unregistered hashes.
func (s *Service) GetInvoiceByHash(ctx context.Context, hash models.ContentHash) (_ uint64, err error) {
	ctx, finish := s.start(ctx, opGetByHash)
	defer func() { finish(err) }()

	if invoiceID, ok := s.cachedInvoiceID(ctx, hash); ok {
		return invoiceID, nil
	}
	invoiceID, err := s.store.InvoiceIDByHash(ctx, hash)
	if err != nil {
		return 0, translate(err, "failed to look up content hash")
	}
	s.warmHashCache(ctx, hash, invoiceID)
	return invoiceID, nil
}

func (s *Service) cachedInvoiceID(ctx context.Context, hash models.ContentHash) (uint64, bool) {
	if s.hashCache == nil {
		return 0, false
	}
	invoiceID, ok, err := s.hashCache.Get(ctx, hash)
	switch {
	case err != nil:
		s.recordCacheLookup(hashCacheFailure)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "hash cache lookup failed", "hash", hash.String(), "error", err)
		}
		return 0, false
	case !ok:
		s.recordCacheLookup(hashCacheMiss)
		return 0, false
	}

	inv, err := s.store.Invoice(ctx, invoiceID)
	if err != nil || inv.Hash != hash {
		s.recordCacheLookup(hashCacheStale)
		if s.logger != nil {
			s.logger.DebugContext(ctx, "hash cache entry does not match the registry",
				"hash", hash.String(),
				"cached_invoice_id", invoiceID,
			)
		}
		return 0, false
	}
	s.recordCacheLookup(hashCacheHit)
	return invoiceID, true
}

// warmHashCache is best effort. It overwrites, so a stale entry is replaced
// by the id the store just confirmed.
func (s *Service) warmHashCache(ctx context.Context, hash models.ContentHash, invoiceID uint64) {
	if s.hashCache == nil {
		return
	}
	if err := s.hashCache.Set(ctx, hash, invoiceID); err != nil && !errors.Is(err, sentinel.ErrUnavailable) && s.logger != nil {
		s.logger.WarnContext(ctx, "hash cache write failed", "hash", hash.String(), "invoice_id", invoiceID, "error", err)
	}
}

func (s *Service) recordCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.IncrementHashCacheLookup(result)
	}
}
