// Package slotdate handles the "DD Mon YYYY" dates used by the availability
// API (for example "02 Feb 2027") and the cutoff policy built on them.
package slotdate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the format the availability API uses for appointment dates.
const Layout = "02 Jan 2006"

// parseLayout accepts single-digit days as well ("1 Dec 2026").
const parseLayout = "2 Jan 2006"

// ErrEmptyDate is returned when there is no date to parse.
var ErrEmptyDate = errors.New("empty date")

// ErrMalformedDate is returned when a date is present but not in Layout.
var ErrMalformedDate = errors.New("malformed date")

// Date is a calendar day with no time-of-day or zone component.
type Date struct {
	t time.Time
}

// Parse reads a date in Layout. Empty input yields ErrEmptyDate, anything else
// that does not parse yields ErrMalformedDate.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrEmptyDate
	}

	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrMalformedDate, s, err)
	}
	return Date{t: t}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// IsZero reports whether d was never set.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String formats d in Layout.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}
