package handler

import (
	"strings"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/pkg/contenthash"
	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
)

// Handlers validate shape only. Every registry rule, including required
// identities, is left to the service so failures keep their documented order.

type TransferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type SetOracleRequest struct {
	NewOracle string `json:"new_oracle"`
}

type SetPausedRequest struct {
	Paused *bool `json:"paused"`
}

func (r *SetPausedRequest) Validate() error {
	if r.Paused == nil {
		return dErrors.New(dErrors.CodeBadRequest, "paused is required")
	}
	return nil
}

// UpdateStatusRequest accepts a status name or number. Unknown values are
// passed on so the registry reports invalid_status after its pause check.
type UpdateStatusRequest struct {
	Status *models.Status `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	if r.Status == nil {
		return dErrors.New(dErrors.CodeBadRequest, "status is required")
	}
	return nil
}

// CreateInvoiceRequest is the body of POST /invoices.
type CreateInvoiceRequest struct {
	Recipient   string `json:"recipient"`
	Amount      uint64 `json:"amount"`
	Currency    string `json:"currency"`
	DueDate     uint64 `json:"due_date"`
	Description string `json:"description"`
	// Hash is optional; when empty it is derived from the document.
	Hash      string `json:"hash,omitempty"`
	Reference string `json:"reference,omitempty"`

	parsedHash models.ContentHash
}

func (r *CreateInvoiceRequest) Normalize() {
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.Hash = strings.TrimSpace(r.Hash)
	r.Reference = strings.TrimSpace(r.Reference)
}

func (r *CreateInvoiceRequest) Validate() error {
	if r.Hash == "" {
		return nil
	}
	h, err := models.ParseContentHash(r.Hash)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "hash must be 32 hex encoded bytes")
	}
	r.parsedHash = h
	return nil
}

func (r *CreateInvoiceRequest) HasHash() bool {
	return r.Hash != ""
}

// ToModel converts the body. The hash is zero when it must be derived.
func (r *CreateInvoiceRequest) ToModel() models.CreateInvoiceRequest {
	return models.CreateInvoiceRequest{
		Recipient:   id.ParseIdentity(r.Recipient),
		Amount:      r.Amount,
		Currency:    r.Currency,
		DueDate:     r.DueDate,
		Description: r.Description,
		Hash:        r.parsedHash,
	}
}

// Document is the hashed form of the request as issued by issuer.
func (r *CreateInvoiceRequest) Document(issuer id.Identity) contenthash.Document {
	return contenthash.Document{
		Issuer:      issuer,
		Recipient:   id.ParseIdentity(r.Recipient),
		Amount:      r.Amount,
		Currency:    r.Currency,
		DueDate:     r.DueDate,
		Description: r.Description,
		Reference:   r.Reference,
	}
}
