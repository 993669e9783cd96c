package alerts

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

// UnknownDate stands in for a start date the source did not report.
const UnknownDate = "Unknown"

// Alert is a slot availability notification. Subject and Body hold the
// rendered plain-text message; the remaining fields are for structured sinks.
type Alert struct {
	ID               string           `json:"id"`
	Transition       model.Transition `json:"transition"`
	Location         string           `json:"location"`
	ReportedLocation string           `json:"reported_location"`
	Slots            int              `json:"slots"`
	PreviousSlots    int              `json:"previous_slots"`
	StartDate        string           `json:"start_date"`
	Cutoff           string           `json:"cutoff,omitempty"`
	CheckedAt        time.Time        `json:"checked_at"`
	Subject          string           `json:"subject"`
	Body             string           `json:"body"`
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
