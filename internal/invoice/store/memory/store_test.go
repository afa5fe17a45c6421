package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	id "tradeinvoice/pkg/domain"
	"tradeinvoice/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New(models.RegistryState{Admin: "admin", Oracle: "oracle"})
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newInvoice(invoiceID uint64, hash byte) *models.Invoice {
	return &models.Invoice{
		ID:        invoiceID,
		Issuer:    "seller",
		Recipient: "buyer",
		Amount:    100,
		Currency:  "USD",
		IssueDate: 10,
		DueDate:   20,
		Status:    models.StatusPending,
		Hash:      models.ContentHash{hash},
	}
}

func (s *InMemoryStoreSuite) create(inv *models.Invoice) error {
	_, err := s.store.Execute(s.ctx, func(ports.View) (models.Change, error) {
		return models.Change{Created: inv}, nil
	})
	return err
}

// TestCreationAndLookups verifies the record, hash entry and counter land together.
func (s *InMemoryStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds invoice by id and hash", func() {
		s.Require().NoError(s.create(s.newInvoice(1, 0xAA)))

		found, err := s.store.Invoice(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(id.Identity("seller"), found.Issuer)

		invoiceID, err := s.store.InvoiceIDByHash(s.ctx, models.ContentHash{0xAA})
		s.Require().NoError(err)
		s.Equal(uint64(1), invoiceID)

		state, err := s.store.State(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), state.InvoiceCounter)
	})

	s.Run("returns ErrNotFound for unknown keys", func() {
		_, err := s.store.Invoice(s.ctx, 99)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.InvoiceIDByHash(s.ctx, models.ContentHash{0xFF})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestApplyPreconditions verifies rejected changes write nothing.
func (s *InMemoryStoreSuite) TestApplyPreconditions() {
	s.Require().NoError(s.create(s.newInvoice(1, 0x01)))

	s.Run("rejects a duplicate hash", func() {
		err := s.create(s.newInvoice(2, 0x01))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects an id that skips the counter", func() {
		err := s.create(s.newInvoice(5, 0x05))
		s.ErrorIs(err, sentinel.ErrInvalidState)
		_, err = s.store.InvoiceIDByHash(s.ctx, models.ContentHash{0x05})
		s.ErrorIs(err, sentinel.ErrNotFound, "hash must not be indexed after a rejected create")
	})

	s.Run("rejects an update of an unknown invoice", func() {
		_, err := s.store.Execute(s.ctx, func(ports.View) (models.Change, error) {
			return models.Change{Updated: &models.Invoice{ID: 42, Status: models.StatusPaid}}, nil
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	state, err := s.store.State(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), state.InvoiceCounter)
}

// TestDecideErrorsPassThrough verifies decide failures are returned unchanged and commit nothing.
func (s *InMemoryStoreSuite) TestDecideErrorsPassThrough() {
	boom := errors.New("rejected")
	paused := true
	_, err := s.store.Execute(s.ctx, func(ports.View) (models.Change, error) {
		return models.Change{Paused: &paused}, boom
	})
	s.Equal(boom, err)

	state, err := s.store.State(s.ctx)
	s.Require().NoError(err)
	s.False(state.Paused)
}

// TestUpdateTouchesOnlyMutableFields verifies immutable fields survive an update.
func (s *InMemoryStoreSuite) TestUpdateTouchesOnlyMutableFields() {
	s.Require().NoError(s.create(s.newInvoice(1, 0x01)))

	_, err := s.store.Execute(s.ctx, func(ports.View) (models.Change, error) {
		return models.Change{Updated: &models.Invoice{
			ID:       1,
			Issuer:   "mallory",
			Amount:   1,
			Status:   models.StatusPaid,
			Verified: true,
		}}, nil
	})
	s.Require().NoError(err)

	found, err := s.store.Invoice(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(models.StatusPaid, found.Status)
	s.True(found.Verified)
	s.Equal(id.Identity("seller"), found.Issuer)
	s.Equal(uint64(100), found.Amount)
}

// TestReturnedRecordsAreCopies verifies callers cannot mutate stored records.
func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	s.Require().NoError(s.create(s.newInvoice(1, 0x01)))

	found, err := s.store.Invoice(s.ctx, 1)
	s.Require().NoError(err)
	found.Status = models.StatusCancelled

	again, err := s.store.Invoice(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, again.Status)
}

// TestRoleAndPauseChanges verifies governance fields are applied.
func (s *InMemoryStoreSuite) TestRoleAndPauseChanges() {
	admin := id.Identity("admin-2")
	oracle := id.Identity("oracle-2")
	paused := true
	_, err := s.store.Execute(s.ctx, func(ports.View) (models.Change, error) {
		return models.Change{Admin: &admin, Oracle: &oracle, Paused: &paused}, nil
	})
	s.Require().NoError(err)

	state, err := s.store.State(s.ctx)
	s.Require().NoError(err)
	s.Equal(admin, state.Admin)
	s.Equal(oracle, state.Oracle)
	s.True(state.Paused)
}
