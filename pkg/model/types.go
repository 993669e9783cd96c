package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Observation is one normalized snapshot of slot availability for the target
// location. It is a value: copies are independent and nothing mutates one in
// place, WithCheckedAt returns a new Observation.
type Observation struct {
	Location  string    `json:"location" yaml:"location" toml:"location"`
	Slots     int       `json:"slots" yaml:"slots" toml:"slots"`
	StartDate *string   `json:"start_date" yaml:"start_date" toml:"start_date,omitempty"`
	Checked   *string   `json:"checked" yaml:"checked" toml:"checked,omitempty"`
	CheckedAt time.Time `json:"last_checked" yaml:"last_checked" toml:"last_checked"`
}

// WithCheckedAt returns a copy of o stamped with the local check time.
func (o Observation) WithCheckedAt(t time.Time) Observation {
	o.StartDate = cloneString(o.StartDate)
	o.Checked = cloneString(o.Checked)
	o.CheckedAt = t
	return o
}

// StartDateValue returns the earliest start date, or "" when absent.
func (o Observation) StartDateValue() string {
	if o.StartDate == nil {
		return ""
	}
	return *o.StartDate
}

// UnmarshalJSON accepts last_checked in RFC 3339 and in the zone-less ISO
// form older state files carry, which is read as local time.
func (o *Observation) UnmarshalJSON(data []byte) error {
	type plain Observation
	var aux struct {
		plain
		CheckedAt *string `json:"last_checked"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*o = Observation(aux.plain)
	if aux.CheckedAt == nil || strings.TrimSpace(*aux.CheckedAt) == "" {
		return nil
	}
	t, err := ParseCheckedAt(*aux.CheckedAt)
	if err != nil {
		return err
	}
	o.CheckedAt = t
	return nil
}

var checkedAtLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseCheckedAt parses a check timestamp. Zone-less values are local time.
func ParseCheckedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range checkedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse last_checked %q: unrecognized layout", s)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Transition classifies how availability changed between two observations.
type Transition string

const (
	TransitionBaseline  Transition = "baseline"  // No previous observation
	TransitionOpened    Transition = "opened"    // Went from zero to some slots
	TransitionIncreased Transition = "increased" // More slots than before
	TransitionUnchanged Transition = "unchanged" // Anything else, including decreases
)

// Notifiable reports whether the transition is eligible for a notification.
func (t Transition) Notifiable() bool {
	return t == TransitionOpened || t == TransitionIncreased
}
