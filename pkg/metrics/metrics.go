// Package metrics exposes run statistics in the Prometheus format, either as
// a scrape handler or as a node_exporter textfile.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/slotwatch/pkg/tracker"
)

const namespace = "slotwatch"

// Collector records finished runs. It owns its registry so several
// collectors can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	slots         *prometheus.GaugeVec
	lastSuccessTS *prometheus.GaugeVec
	runDuration   prometheus.Summary
	stateErrors   *prometheus.CounterVec
}

// NewCollector creates a collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Number of check runs by outcome",
	}, []string{"outcome"})
	c.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Number of alert deliveries by notifier and status",
	}, []string{"notifier", "status"})
	c.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Number of detected slot transitions by kind",
	}, []string{"transition"})
	c.slots = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "slots",
		Help:      "Slot count from the last successful observation",
	}, []string{"location"})
	c.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last run that reached the source and found the location",
	}, []string{"location"})
	c.runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Time from fetch to save of a single check run",
	})
	c.stateErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_errors_total",
		Help:      "Number of state store failures by operation",
	}, []string{"op"})

	c.registry.MustRegister(
		c.runsTotal, c.notifications, c.transitions,
		c.slots, c.lastSuccessTS, c.runDuration, c.stateErrors,
	)
	return c
}

// ObserveRun implements tracker.RunObserver.
func (c *Collector) ObserveRun(res tracker.Result) {
	c.runsTotal.WithLabelValues(string(res.Outcome)).Inc()
	if !res.StartedAt.IsZero() && !res.FinishedAt.IsZero() {
		c.runDuration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
	}

	for _, d := range res.Deliveries {
		status := "ok"
		if d.Err != nil {
			status = "error"
		}
		c.notifications.WithLabelValues(d.Notifier, status).Inc()
	}

	if res.LoadErr != nil {
		c.stateErrors.WithLabelValues("load").Inc()
	}
	if res.SaveErr != nil {
		c.stateErrors.WithLabelValues("save").Inc()
	}

	if res.Outcome != tracker.OutcomeCompleted || res.Observation == nil {
		return
	}
	obs := res.Observation
	c.transitions.WithLabelValues(string(res.Transition)).Inc()
	c.slots.WithLabelValues(obs.Location).Set(float64(obs.Slots))
	c.lastSuccessTS.WithLabelValues(obs.Location).Set(float64(obs.CheckedAt.Unix()))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics to path for the node_exporter textfile
// collector. The write goes through a temporary file and a rename.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
