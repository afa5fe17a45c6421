package models

import (
	id "tradeinvoice/pkg/domain"
)

// RegistryState is the singleton state shared by every invoice: the two role
// holders, the circuit breaker and the last allocated invoice id.
type RegistryState struct {
	Admin          id.Identity `json:"admin"`
	Oracle         id.Identity `json:"oracle"`
	Paused         bool        `json:"paused"`
	InvoiceCounter uint64      `json:"invoice_count"`
}

// NextID is the id the next successful creation will receive.
func (s RegistryState) NextID() uint64 {
	return s.InvoiceCounter + 1
}

// Change is the complete set of writes a registry operation commits.
// A store applies all of it or none of it.
type Change struct {
	Admin  *id.Identity
	Oracle *id.Identity
	Paused *bool
	// Created is inserted together with its hash index entry, and the counter
	// advances to Created.ID.
	Created *Invoice
	// Updated replaces only Status and Verified of the stored invoice.
	Updated *Invoice
}

// IsEmpty reports whether the change writes nothing.
func (c Change) IsEmpty() bool {
	return c.Admin == nil && c.Oracle == nil && c.Paused == nil && c.Created == nil && c.Updated == nil
}
