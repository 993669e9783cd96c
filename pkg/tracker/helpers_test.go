package tracker_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/ogulcanaydogan/slotwatch/pkg/alerts"
	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/source"
	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeFetcher struct {
	resp source.Response
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context) (source.Response, error) {
	return f.resp, f.err
}

// responseWith builds an availability document the way source.Decode would.
func responseWith(location string, slots int, startDate string) source.Response {
	record := map[string]any{
		"visa_location": location,
		"slots":         float64(slots),
		"createdon":     "2026-02-01T10:00:00",
	}
	if startDate != "" {
		record["start_date"] = startDate
	}
	return source.Response{"slotDetails": []any{record}}
}

type recordingNotifier struct {
	mu     sync.Mutex
	name   string
	err    error
	alerts []alerts.Alert
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Send(_ context.Context, alert alerts.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *recordingNotifier) sent() []alerts.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]alerts.Alert(nil), n.alerts...)
}

var errDiskFull = errors.New("disk full")

// failingSaveStore wraps a store and rejects every Save.
type failingSaveStore struct {
	prev *model.Observation
}

func (s *failingSaveStore) Load(_ context.Context) (*model.Observation, error) {
	if s.prev == nil {
		return nil, storage.ErrNotFound
	}
	return s.prev, nil
}

func (s *failingSaveStore) Save(_ context.Context, _ model.Observation) error { return errDiskFull }

func (s *failingSaveStore) Close() error { return nil }
