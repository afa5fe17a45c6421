package models

import (
	"strings"

	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
)

const (
	currencyLength       = 3
	maxDescriptionLength = 512
)

// Invoice is the record tracked by the registry.
//
// Invariants:
//   - ID, Issuer, Recipient, Amount, Currency, IssueDate, DueDate, Description
//     and Hash never change after creation
//   - Recipient is never the absent identity and Amount is never zero
//   - DueDate is strictly greater than IssueDate
//   - Verified only ever goes from false to true
//   - Status is always one of the five lifecycle values
type Invoice struct {
	ID          uint64      `json:"id"`
	Issuer      id.Identity `json:"issuer"`
	Recipient   id.Identity `json:"recipient"`
	Amount      uint64      `json:"amount"`
	Currency    string      `json:"currency"`
	IssueDate   uint64      `json:"issue_date"`
	DueDate     uint64      `json:"due_date"`
	Status      Status      `json:"status"`
	Verified    bool        `json:"verified"`
	Description string      `json:"description"`
	Hash        ContentHash `json:"hash"`
}

// CreateInvoiceRequest carries the caller-supplied fields of a new invoice.
type CreateInvoiceRequest struct {
	Recipient   id.Identity
	Amount      uint64
	Currency    string
	DueDate     uint64
	Description string
	Hash        ContentHash
}

// Normalize trims and upper-cases the currency code.
func (r *CreateInvoiceRequest) Normalize() {
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

// NewInvoice validates req and builds the pending, unverified record that
// would be stored under invoiceID. Checks run in a fixed order: recipient,
// amount, due date, currency, description. Hash uniqueness is the caller's
// concern because it needs the index.
func NewInvoice(invoiceID uint64, issuer id.Identity, req CreateInvoiceRequest, now uint64) (*Invoice, error) {
	if req.Recipient.IsNil() {
		return nil, dErrors.New(dErrors.CodeZeroAddress, "recipient is required")
	}
	if req.Amount == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInvoice, "amount must be greater than zero")
	}
	if req.DueDate <= now {
		return nil, dErrors.New(dErrors.CodeInvalidInvoice, "due date must be after the current height")
	}
	if !validCurrency(req.Currency) {
		return nil, dErrors.New(dErrors.CodeInvalidInvoice, "currency must be a three letter code")
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, dErrors.New(dErrors.CodeInvalidInvoice, "description must be 512 bytes or less")
	}
	return &Invoice{
		ID:          invoiceID,
		Issuer:      issuer,
		Recipient:   req.Recipient,
		Amount:      req.Amount,
		Currency:    req.Currency,
		IssueDate:   now,
		DueDate:     req.DueDate,
		Status:      StatusPending,
		Verified:    false,
		Description: req.Description,
		Hash:        req.Hash,
	}, nil
}

// IsIssuedBy reports whether caller created the invoice.
func (i *Invoice) IsIssuedBy(caller id.Identity) bool {
	return !caller.IsNil() && i.Issuer == caller
}

// CanCancel checks the Pending-only precondition of cancellation.
func (i *Invoice) CanCancel() error {
	if i.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvalidStatus, "only pending invoices can be cancelled")
	}
	return nil
}

// CanVerify checks the one-way verification latch.
func (i *Invoice) CanVerify() error {
	if i.Verified {
		return dErrors.New(dErrors.CodeAlreadyVerified, "invoice is already verified")
	}
	return nil
}

func validCurrency(code string) bool {
	if len(code) != currencyLength {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
