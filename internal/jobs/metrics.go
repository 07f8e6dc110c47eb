// Package jobmetrics instruments background task handlers.
package jobmetrics

import (
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	// StatusDropped marks runs that failed with asynq.SkipRetry and will not
	// be attempted again.
	StatusDropped = "dropped"
)

// Metrics holds the job collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the job collectors on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogdesk_jobs_total",
			Help: "Background task runs by task type and status.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogdesk_jobs_failures_total",
			Help: "Background task runs that returned an error, dropped or not.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogdesk_job_duration_seconds",
			Help:    "Background task run time.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration)
	return m
}

// Tracker times a single run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing a run of job.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records the run and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	t.metrics.runs.WithLabelValues(t.job, Status(err)).Inc()
	if err != nil {
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// Status classifies the result of a run.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, asynq.SkipRetry):
		return StatusDropped
	default:
		return StatusFailure
	}
}
