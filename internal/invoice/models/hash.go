package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ContentHash is the fixed-size fingerprint an invoice is registered under.
type ContentHash [32]byte

// ParseContentHash decodes 64 hex characters, with or without a 0x prefix.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != hex.EncodedLen(len(h)) {
		return h, fmt.Errorf("content hash must be %d hex characters, got %d", hex.EncodedLen(len(h)), len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("content hash is not hex: %w", err)
	}
	return h, nil
}

// ContentHashFromBytes copies a 32 byte slice, as read from storage.
func ContentHashFromBytes(b []byte) (ContentHash, error) {
	var h ContentHash
	if len(b) != len(h) {
		return h, fmt.Errorf("content hash must be %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h ContentHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *ContentHash) UnmarshalText(text []byte) error {
	parsed, err := ParseContentHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
