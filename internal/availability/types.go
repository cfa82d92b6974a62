package availability

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO layout used for record keys.
const DateLayout = "2006-01-02"

var (
	// ErrEmptyUser is returned when an operation is called without a user name.
	ErrEmptyUser = errors.New("user name is required")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)

// Record maps an ISO date to the set of users available on that date.
// It is also the persisted JSON shape: {"2024-01-10": {"Alice": true}}.
// A date with no users is never kept.
type Record map[string]map[string]bool

// SummaryEntry is the aggregate for one date. It is derived, never stored.
type SummaryEntry struct {
	Date  string   `json:"date"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// ValidateUser checks that a user name is usable as an identifier.
func ValidateUser(user string) error {
	if user == "" {
		return ErrEmptyUser
	}
	return nil
}

// NormalizeDates validates every date and drops duplicates, keeping the
// first occurrence order.
func NormalizeDates(dates []string) ([]string, error) {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}
