// Package contenthash derives the Keccak-256 fingerprint an invoice document
// is registered under.
//
// The preimage is a domain tag followed by each field in a fixed order.
// Strings are length prefixed and integers are 8 byte big endian, so no two
// distinct documents share an encoding.
package contenthash

import (
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/sha3"

	id "tradeinvoice/pkg/domain"
)

const domainTag = "tradeinvoice/document/v1"

// Size is the length of a content hash in bytes.
const Size = 32

// Document is the off-ledger invoice document.
type Document struct {
	Issuer      id.Identity `yaml:"issuer" json:"issuer"`
	Recipient   id.Identity `yaml:"recipient" json:"recipient"`
	Amount      uint64      `yaml:"amount" json:"amount"`
	Currency    string      `yaml:"currency" json:"currency"`
	DueDate     uint64      `yaml:"due_date" json:"due_date"`
	Description string      `yaml:"description" json:"description"`
	// Reference is the issuer's own document number, if any.
	Reference string `yaml:"reference" json:"reference"`
}

// Sum hashes the canonical encoding of doc.
func Sum(doc Document) [Size]byte {
	h := sha3.NewLegacyKeccak256()
	w := encoder{buf: make([]byte, 0, 256)}
	w.str(domainTag)
	w.str(id.ParseIdentity(doc.Issuer.String()).String())
	w.str(id.ParseIdentity(doc.Recipient.String()).String())
	w.u64(doc.Amount)
	w.str(strings.ToUpper(strings.TrimSpace(doc.Currency)))
	w.u64(doc.DueDate)
	w.str(doc.Description)
	w.str(strings.TrimSpace(doc.Reference))
	_, _ = h.Write(w.buf)

	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Keccak256 hashes raw bytes, for documents hashed as opaque files.
func Keccak256(data []byte) [Size]byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

type encoder struct {
	buf []byte
}

func (e *encoder) u64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

func (e *encoder) str(s string) {
	e.u64(uint64(len(s)))
	e.buf = append(e.buf, s...)
}
