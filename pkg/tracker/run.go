package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/slotdate"
	"github.com/ogulcanaydogan/slotwatch/pkg/source"
	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
)

// Runner performs one check-and-notify pass: fetch, extract, load the last
// observation, detect, filter, notify, save.
type Runner struct {
	fetcher    Fetcher
	store      storage.Store
	dispatcher *Dispatcher
	settings   Settings
	logger     *slog.Logger
	now        func() time.Time
	observers  []RunObserver
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the time source used to stamp observations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithObserver registers an observer for finished runs.
func WithObserver(o RunObserver) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// NewRunner creates a runner with the given dependencies.
func NewRunner(fetcher Fetcher, store storage.Store, dispatcher *Dispatcher, settings Settings, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		fetcher:    fetcher,
		store:      store,
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a single pass. It never returns an error: every failure is
// logged, recorded in the Result and, past extraction, followed by a save.
func (r *Runner) Run(ctx context.Context) Result {
	res := Result{
		RunID:     uuid.New().String(),
		StartedAt: r.now(),
	}
	logger := r.logger.With("run_id", res.RunID, "location", r.settings.TargetLocation)
	defer func() {
		res.FinishedAt = r.now()
		r.notifyObservers(res)
	}()

	resp, err := r.fetcher.Fetch(ctx)
	if err == nil && len(resp) == 0 {
		err = source.ErrEmptyResponse
	}
	if err != nil {
		logger.Error("fetch failed", "error", err)
		res.Outcome = OutcomeFetchFailed
		res.FetchErr = err
		return res
	}

	obs, ok := source.Extract(resp, r.settings.TargetLocation, r.settings.Fields)
	if !ok {
		logger.Warn("target location not found in response")
		res.Outcome = OutcomeNoMatch
		return res
	}
	obs = obs.WithCheckedAt(r.now())
	res.Observation = &obs

	prev, err := r.store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		prev = nil
	case err != nil:
		logger.Warn("previous state unreadable, treating as first run", "error", err)
		res.LoadErr = err
		prev = nil
	}
	res.Previous = prev

	res.Transition = Detect(prev, obs)
	logger.Info("slots checked",
		"reported_location", obs.Location,
		"slots", obs.Slots,
		"start_date", obs.StartDateValue(),
		"transition", res.Transition,
	)

	if res.Transition.Notifiable() && r.passesCutoff(logger, obs, &res) {
		res.Deliveries, res.NotifyErr = r.dispatcher.Notify(ctx, obs, res.Transition, prev)
		for _, d := range res.Deliveries {
			if d.Err == nil {
				res.Notified = true
				break
			}
		}
	}

	if err := r.store.Save(ctx, obs); err != nil {
		logger.Error("save state failed", "error", err)
		res.SaveErr = err
	} else {
		res.Saved = true
	}

	res.Outcome = OutcomeCompleted
	return res
}

func (r *Runner) passesCutoff(logger *slog.Logger, obs model.Observation, res *Result) bool {
	if r.settings.Cutoff == nil {
		return true
	}

	passed, err := slotdate.CheckCutoff(obs.StartDate, *r.settings.Cutoff)
	if err != nil {
		logger.Warn("start date unparseable, notifying anyway",
			"start_date", obs.StartDateValue(),
			"error", err,
		)
	}
	res.CutoffChecked = true
	res.CutoffPassed = passed

	if !passed {
		logger.Info("start date not before cutoff, skipping notification",
			"start_date", obs.StartDateValue(),
			"cutoff", r.settings.Cutoff.String(),
		)
	}
	return passed
}

func (r *Runner) notifyObservers(res Result) {
	for _, o := range r.observers {
		o.ObserveRun(res)
	}
}
