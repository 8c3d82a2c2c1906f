package stats_test

import (
	"testing"
	"time"

	"github.com/beamtrade/beam/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string) bool {
	t.Helper()
	mf, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range mf {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

func TestRoutineSpawnedAndCompletedRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := stats.NewRegistry(reg)

	s.RoutineSpawned()
	s.RoutineSpawned()
	s.RoutineCompleted()

	require.True(t, findMetric(t, reg, "beam_routines_spawned_total"))
	require.True(t, findMetric(t, reg, "beam_routines_completed_total"))
	require.True(t, findMetric(t, reg, "beam_routines_live"))
}

func TestSetQueueDepthAndChannelCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := stats.NewRegistry(reg)

	s.SetQueueDepth("requests", 3)
	s.ChannelRead(128)
	s.ChannelWritten(64)
	s.ChannelRead(0) // must not panic or register a zero sample

	require.True(t, findMetric(t, reg, "beam_queue_depth"))
	require.True(t, findMetric(t, reg, "beam_channel_bytes_read_total"))
	require.True(t, findMetric(t, reg, "beam_channel_bytes_written_total"))
}

func TestReconnectMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := stats.NewRegistry(reg)

	s.ReconnectAttempt()
	s.ReconnectAttempt()
	s.ReconnectSucceeded()

	require.True(t, findMetric(t, reg, "beam_service_client_reconnect_attempts_total"))
	require.True(t, findMetric(t, reg, "beam_service_client_reconnect_successes_total"))
}

func TestRequestServedRecordsLabeledMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := stats.NewRegistry(reg)

	s.RequestServed("GET", "200", 5*time.Millisecond)
	s.RequestServed("POST", "404", 1*time.Millisecond)

	require.True(t, findMetric(t, reg, "beam_http_requests_total"))
	require.True(t, findMetric(t, reg, "beam_http_request_duration_seconds"))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats.NewRegistry(reg)
	require.Panics(t, func() { stats.NewRegistry(reg) })
}
