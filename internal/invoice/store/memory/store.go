package memory

import (
	"context"
	"fmt"
	"sync"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	"tradeinvoice/pkg/platform/sentinel"
)

// InMemory keeps the whole registry behind one RWMutex. Execute holds the
// write lock across decide and apply; reads share the read lock.
type InMemory struct {
	mu       sync.RWMutex
	state    models.RegistryState
	invoices map[uint64]models.Invoice
	hashes   map[models.ContentHash]uint64
}

// New returns an empty registry with the given initial role holders.
func New(initial models.RegistryState) *InMemory {
	return &InMemory{
		state:    initial,
		invoices: make(map[uint64]models.Invoice),
		hashes:   make(map[models.ContentHash]uint64),
	}
}

func (s *InMemory) State(_ context.Context) (models.RegistryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *InMemory) Invoice(_ context.Context, invoiceID uint64) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findInvoice(invoiceID)
}

func (s *InMemory) InvoiceIDByHash(_ context.Context, hash models.ContentHash) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findHash(hash)
}

// Execute runs decide and applies its change while holding the write lock.
func (s *InMemory) Execute(ctx context.Context, decide ports.Decide) (models.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.Change{}, err
	}

	change, err := decide(lockedView{s})
	if err != nil {
		return models.Change{}, err
	}
	if err := s.check(change); err != nil {
		return models.Change{}, err
	}
	s.apply(change)
	return change, nil
}

// check rejects a change that no longer fits the stored state. It runs
// before any write so a rejected change leaves everything untouched.
func (s *InMemory) check(change models.Change) error {
	if c := change.Created; c != nil {
		if c.ID != s.state.NextID() {
			return fmt.Errorf("invoice id %d is not next (%d): %w", c.ID, s.state.NextID(), sentinel.ErrInvalidState)
		}
		if _, taken := s.hashes[c.Hash]; taken {
			return fmt.Errorf("hash %s already indexed: %w", c.Hash, sentinel.ErrConflict)
		}
	}
	if u := change.Updated; u != nil {
		if _, ok := s.invoices[u.ID]; !ok {
			return fmt.Errorf("update invoice %d: %w", u.ID, sentinel.ErrNotFound)
		}
	}
	return nil
}

func (s *InMemory) apply(change models.Change) {
	if change.Admin != nil {
		s.state.Admin = *change.Admin
	}
	if change.Oracle != nil {
		s.state.Oracle = *change.Oracle
	}
	if change.Paused != nil {
		s.state.Paused = *change.Paused
	}
	if c := change.Created; c != nil {
		s.invoices[c.ID] = *c
		s.hashes[c.Hash] = c.ID
		s.state.InvoiceCounter = c.ID
	}
	if u := change.Updated; u != nil {
		stored := s.invoices[u.ID]
		stored.Status = u.Status
		stored.Verified = u.Verified
		s.invoices[u.ID] = stored
	}
}

func (s *InMemory) findInvoice(invoiceID uint64) (*models.Invoice, error) {
	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &inv, nil
}

func (s *InMemory) findHash(hash models.ContentHash) (uint64, error) {
	invoiceID, ok := s.hashes[hash]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return invoiceID, nil
}

// lockedView reads the maps directly; the caller already holds the write lock.
type lockedView struct {
	s *InMemory
}

func (v lockedView) State(context.Context) (models.RegistryState, error) {
	return v.s.state, nil
}

func (v lockedView) Invoice(_ context.Context, invoiceID uint64) (*models.Invoice, error) {
	return v.s.findInvoice(invoiceID)
}

func (v lockedView) InvoiceIDByHash(_ context.Context, hash models.ContentHash) (uint64, error) {
	return v.s.findHash(hash)
}
