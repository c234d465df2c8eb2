// Package metrics exposes Prometheus collectors for clock events and the
// leave batch jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hris"

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeUpdated = "updated"
)

var (
	ClockEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "attendance",
		Name:      "clock_events_total",
		Help:      "Clock-in and clock-out attempts by outcome.",
	}, []string{"event", "outcome"})

	BatchUsers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "leave",
		Name:      "batch_users_total",
		Help:      "Users handled by leave batch runs by outcome.",
	}, []string{"batch", "outcome"})

	BatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "leave",
		Name:      "batch_duration_seconds",
		Help:      "Wall time of leave batch runs.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"batch", "dry_run"})

	CronRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cron",
		Name:      "job_runs_total",
		Help:      "Scheduled job executions by outcome.",
	}, []string{"job", "outcome"})
)

func init() {
	prometheus.MustRegister(ClockEvents, BatchUsers, BatchDuration, CronRuns)
}

// ObserveBatch records how long a batch took since start.
func ObserveBatch(batch string, dryRun bool, start time.Time) {
	label := "false"
	if dryRun {
		label = "true"
	}
	BatchDuration.WithLabelValues(batch, label).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
