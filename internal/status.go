package internal

import "strings"

// Status is the shared lifecycle state of calendar entries and of user
// account authorization. The wire form is upper-case; query parameters are
// accepted case-insensitively.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus parses a status filter value. Empty input means "no filter"
// and returns (nil, true).
func ParseStatus(raw string) (*Status, bool) {
	if raw == "" {
		return nil, true
	}
	switch strings.ToUpper(raw) {
	case string(StatusPending):
		s := StatusPending
		return &s, true
	case string(StatusAccepted):
		s := StatusAccepted
		return &s, true
	case string(StatusRejected):
		s := StatusRejected
		return &s, true
	}
	return nil, false
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}
