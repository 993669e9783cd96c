package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/slotwatch/pkg/alerts"
	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/slotdate"
)

// UnknownDate is shown in alerts when the source reported no start date.
const UnknownDate = alerts.UnknownDate

// ErrNoNotifiers is returned by Notify when nothing is configured to send to.
var ErrNoNotifiers = errors.New("no notifiers configured")

// Dispatcher renders slot alerts and fans them out to notifiers.
type Dispatcher struct {
	notifiers []alerts.Notifier
	settings  Settings
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher for the given notifiers.
func NewDispatcher(notifiers []alerts.Notifier, settings Settings, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		settings:  settings,
		logger:    logger,
	}
}

// Compose renders the alert for obs without sending it.
func (d *Dispatcher) Compose(obs model.Observation, transition model.Transition, prev *model.Observation) alerts.Alert {
	startDate := obs.StartDateValue()
	if startDate == "" {
		startDate = UnknownDate
	}

	previous := 0
	if prev != nil {
		previous = prev.Slots
	}

	var cutoff string
	if d.settings.Cutoff != nil {
		cutoff = d.settings.Cutoff.String()
	}

	target := d.settings.TargetLocation
	checkedAt := obs.CheckedAt.Format("2006-01-02 15:04:05 MST")

	var b strings.Builder
	b.WriteString("Great news!\n\n")
	if transition == model.TransitionIncreased {
		fmt.Fprintf(&b, "More visa appointment slots are available in %s (went from %d to %d)!\n\n", target, previous, obs.Slots)
	} else {
		fmt.Fprintf(&b, "Visa appointment slots have opened up in %s!\n\n", target)
	}
	fmt.Fprintf(&b, "Number of slots: %d\n", obs.Slots)
	fmt.Fprintf(&b, "Earliest date: %s\n", startDate)
	fmt.Fprintf(&b, "Checked at: %s\n", checkedAt)
	if cutoff != "" {
		if _, err := slotdate.Parse(obs.StartDateValue()); err != nil {
			fmt.Fprintf(&b, "\nCould not confirm the earliest date is before your cutoff date of %s. Check it before booking.\n", cutoff)
		} else {
			fmt.Fprintf(&b, "\nThis slot is before your cutoff date of %s!\n", cutoff)
		}
	}
	if d.settings.BookingURL != "" {
		fmt.Fprintf(&b, "\nGo book your appointment now: %s\n", d.settings.BookingURL)
	}
	b.WriteString("\nGood luck!\n")

	return alerts.Alert{
		ID:               uuid.New().String(),
		Transition:       transition,
		Location:         target,
		ReportedLocation: obs.Location,
		Slots:            obs.Slots,
		PreviousSlots:    previous,
		StartDate:        startDate,
		Cutoff:           cutoff,
		CheckedAt:        obs.CheckedAt,
		Subject:          fmt.Sprintf("Visa Slots Available in %s!", target),
		Body:             b.String(),
	}
}

// Notify sends the alert for obs to every notifier. Failures are logged and
// joined into the returned error; one failing notifier does not stop the rest.
func (d *Dispatcher) Notify(ctx context.Context, obs model.Observation, transition model.Transition, prev *model.Observation) ([]Delivery, error) {
	if len(d.notifiers) == 0 {
		d.logger.Warn("slots available but no notifiers configured", "location", d.settings.TargetLocation)
		return nil, ErrNoNotifiers
	}

	alert := d.Compose(obs, transition, prev)
	return d.send(ctx, alert)
}

// SendTest pushes a canned alert through every notifier.
func (d *Dispatcher) SendTest(ctx context.Context, obs model.Observation) ([]Delivery, error) {
	if len(d.notifiers) == 0 {
		return nil, ErrNoNotifiers
	}

	alert := d.Compose(obs, model.TransitionOpened, &model.Observation{})
	alert.Subject = "[test] " + alert.Subject
	return d.send(ctx, alert)
}

func (d *Dispatcher) send(ctx context.Context, alert alerts.Alert) ([]Delivery, error) {
	deliveries := make([]Delivery, 0, len(d.notifiers))
	var errs []error
	for _, notifier := range d.notifiers {
		err := notifier.Send(ctx, alert)
		deliveries = append(deliveries, Delivery{Notifier: notifier.Name(), Err: err})
		if err != nil {
			d.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"alert_id", alert.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
			continue
		}
		d.logger.Info("alert sent",
			"notifier", notifier.Name(),
			"alert_id", alert.ID,
			"slots", alert.Slots,
		)
	}
	return deliveries, errors.Join(errs...)
}
