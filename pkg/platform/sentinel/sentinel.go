package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so the registry service can translate them into coded domain errors.
//
//   - ErrNotFound: no record for the key
//   - ErrConflict: a unique key (content hash, invoice id) is already taken
//   - ErrInvalidState: a committed change no longer matches the stored state
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
