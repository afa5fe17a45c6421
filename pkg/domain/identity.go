package domain

import (
	"strings"
)

// legacyNullAddress is the all-zero account address used by ledger clients to
// mean "nobody". It parses to the absent Identity.
const legacyNullAddress = "0x0000000000000000000000000000000000000000"

// Identity is an opaque principal (issuer, recipient, admin, oracle).
// The zero value is the absent identity and is never a valid recipient,
// administrator or oracle.
type Identity string

// ParseIdentity normalizes s. Blank input and the legacy null address both
// yield the absent identity; callers decide whether absence is an error.
func ParseIdentity(s string) Identity {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, legacyNullAddress) {
		return ""
	}
	return Identity(s)
}

// IsNil reports whether the identity is absent.
func (i Identity) IsNil() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}
