package models

import (
	"math"
	"strconv"
	"strings"
)

// Status is the lifecycle tag of an invoice.
type Status uint8

const (
	StatusPending Status = iota
	StatusApproved
	StatusPaid
	StatusDisputed
	StatusCancelled
)

// statusUnrecognized is what undecodable text turns into. It is deliberately
// outside the enum so the registry rejects it with invalid_status in its own
// check order instead of the decoder failing first.
const statusUnrecognized Status = math.MaxUint8

var statusNames = [...]string{
	StatusPending:   "Pending",
	StatusApproved:  "Approved",
	StatusPaid:      "Paid",
	StatusDisputed:  "Disputed",
	StatusCancelled: "Cancelled",
}

// IsValid reports whether s is one of the five lifecycle values.
func (s Status) IsValid() bool {
	return int(s) < len(statusNames)
}

func (s Status) String() string {
	if !s.IsValid() {
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// ParseStatus accepts a status name (any case) or its numeric value.
func ParseStatus(text string) (Status, bool) {
	text = strings.TrimSpace(text)
	for i, name := range statusNames {
		if strings.EqualFold(name, text) {
			return Status(i), true
		}
	}
	if n, err := strconv.ParseUint(text, 10, 8); err == nil && Status(n).IsValid() {
		return Status(n), true
	}
	return statusUnrecognized, false
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText never fails; unrecognized input becomes an invalid Status.
func (s *Status) UnmarshalText(text []byte) error {
	*s, _ = ParseStatus(string(text))
	return nil
}

// UnmarshalJSON accepts a status name or a bare number. Like UnmarshalText
// it never rejects a well-formed value.
func (s *Status) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		text, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		return s.UnmarshalText([]byte(text))
	}
	n, err := strconv.ParseUint(string(data), 10, 8)
	if err != nil {
		*s = statusUnrecognized
		return nil
	}
	*s = Status(n)
	return nil
}
