package jobmetrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("mail:send").End(nil))
	err := errors.New("smtp down")
	assert.Same(t, err, m.Track("mail:send").End(err))
	dropped := fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	assert.ErrorIs(t, m.Track("mail:send").End(dropped), asynq.SkipRetry)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mail:send", StatusDropped)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.failures.WithLabelValues("mail:send")))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, Status(nil))
	assert.Equal(t, StatusFailure, Status(errors.New("x")))
	assert.Equal(t, StatusDropped, Status(fmt.Errorf("wrap: %w", asynq.SkipRetry)))
}

func TestNilMetricsTrackerIsSafe(t *testing.T) {
	var m *Metrics
	err := errors.New("boom")
	assert.Same(t, err, m.Track("mail:send").End(err))
}
