package handler

import "tradeinvoice/internal/invoice/models"

type CreateInvoiceResponse struct {
	InvoiceID uint64             `json:"invoice_id"`
	Hash      models.ContentHash `json:"hash"`
}

type HashLookupResponse struct {
	InvoiceID uint64             `json:"invoice_id"`
	Hash      models.ContentHash `json:"hash"`
}

type CountResponse struct {
	InvoiceCount uint64 `json:"invoice_count"`
}

type PausedResponse struct {
	Paused bool `json:"paused"`
}

type RoleResponse struct {
	Admin  string `json:"admin,omitempty"`
	Oracle string `json:"oracle,omitempty"`
}
