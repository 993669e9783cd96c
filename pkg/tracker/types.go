package tracker

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/slotdate"
	"github.com/ogulcanaydogan/slotwatch/pkg/source"
)

// Settings is the run configuration handed to the tracker at construction.
type Settings struct {
	// TargetLocation is matched case-insensitively as a substring of the
	// reported location name.
	TargetLocation string
	// Cutoff, when set, suppresses alerts for slots starting on or after it.
	Cutoff *slotdate.Date
	// BookingURL is included in the alert body when non-empty.
	BookingURL string
	// Fields names the keys of the availability document.
	Fields source.Fields
}

// Fetcher retrieves the raw availability document.
type Fetcher interface {
	Fetch(ctx context.Context) (source.Response, error)
}

// RunObserver is told about every finished run.
type RunObserver interface {
	ObserveRun(result Result)
}

// Outcome is how far a run got.
type Outcome string

const (
	OutcomeFetchFailed Outcome = "fetch_failed" // Source unreachable or unusable
	OutcomeNoMatch     Outcome = "no_match"     // Target location not in the response
	OutcomeCompleted   Outcome = "completed"    // Observation taken and persisted (or attempted)
)

// Delivery is the result of handing an alert to one notifier.
type Delivery struct {
	Notifier string
	Err      error
}

// Result describes a single run. Errors are recorded here rather than
// returned: a run never fails as a whole.
type Result struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Outcome     Outcome
	Observation *model.Observation
	Previous    *model.Observation
	Transition  model.Transition

	// CutoffChecked is true when a cutoff policy was evaluated, CutoffPassed
	// holds its verdict.
	CutoffChecked bool
	CutoffPassed  bool

	Notified   bool
	Deliveries []Delivery
	Saved      bool

	FetchErr  error
	LoadErr   error
	NotifyErr error
	SaveErr   error
}
