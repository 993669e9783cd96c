package server_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/slotwatch/internal/server"
	"github.com/ogulcanaydogan/slotwatch/pkg/metrics"
	"github.com/ogulcanaydogan/slotwatch/pkg/model"
	"github.com/ogulcanaydogan/slotwatch/pkg/storage"
	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seededStore(t *testing.T) storage.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLite(dbPath, "abu dhabi")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	date := "10 Mar 2026"
	err = store.Save(t.Context(), model.Observation{
		Location:  "ABU DHABI",
		Slots:     3,
		StartDate: &date,
		CheckedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return store
}

func TestServer_Health(t *testing.T) {
	srv := server.NewServer(storage.NewMemory(nil), nil, testLogger())

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_State(t *testing.T) {
	srv := server.NewServer(seededStore(t), nil, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/state", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var obs model.Observation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&obs))
	assert.Equal(t, "ABU DHABI", obs.Location)
	assert.Equal(t, 3, obs.Slots)
	require.NotNil(t, obs.StartDate)
	assert.Equal(t, "10 Mar 2026", *obs.StartDate)
}

func TestServer_StateEmpty(t *testing.T) {
	srv := server.NewServer(storage.NewMemory(nil), nil, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/state", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_LastRun(t *testing.T) {
	srv := server.NewServer(storage.NewMemory(nil), nil, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/runs/last", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	obs := model.Observation{Location: "ABU DHABI", Slots: 2}
	srv.ObserveRun(tracker.Result{
		RunID:       "run-42",
		Outcome:     tracker.OutcomeCompleted,
		Transition:  model.TransitionOpened,
		Observation: &obs,
		Notified:    true,
		NotifyErr:   errors.New("slack: timeout"),
	})

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary server.RunSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, "run-42", summary.RunID)
	assert.Equal(t, tracker.OutcomeCompleted, summary.Outcome)
	assert.Equal(t, model.TransitionOpened, summary.Transition)
	assert.True(t, summary.Notified)
	assert.Equal(t, []string{"slack: timeout"}, summary.Errors)
}

func TestServer_Metrics(t *testing.T) {
	collector := metrics.NewCollector()
	obs := model.Observation{Location: "ABU DHABI", Slots: 5}
	collector.ObserveRun(tracker.Result{Outcome: tracker.OutcomeCompleted, Observation: &obs, Transition: model.TransitionOpened})

	srv := server.NewServer(storage.NewMemory(nil), collector.Handler(), testLogger())

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `slotwatch_slots{location="ABU DHABI"} 5`)
}

func TestServer_NoMetricsHandler(t *testing.T) {
	srv := server.NewServer(storage.NewMemory(nil), nil, testLogger())

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
