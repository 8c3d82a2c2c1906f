// Package stats registers and updates the Prometheus metrics for
// Beam's scheduler, queues, channels, service-client reconnects and HTTP
// server traffic.
//
// Grounded on stats/target_stats.go and stats/proxy_stats.go's Tracker:
// a fixed table of named metrics keyed by a suffix convention (".n" a
// counter, ".ns" a latency, ".size" a byte count, ".bps" a throughput)
// that every subsystem calls into by name rather than holding its own
// ad hoc counters. The teacher builds that table over a dual StatsD/
// Prometheus backend selected by a build tag; Beam has no StatsD
// precedent anywhere in spec or original_source, so Registry drops the
// StatsD half and registers directly against
// github.com/prometheus/client_golang, keeping only the by-purpose
// naming convention and the "one Tracker, every subsystem updates it by
// name" shape.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Tracker of spec §2's "stats" ambient concern: one
// instance per process, handed to the scheduler, the service client and
// the web servlet container so each can report through its own narrow
// interface (see RoutineSpawned/ReconnectAttempt/RequestServed below)
// without importing prometheus itself.
type Registry struct {
	routinesSpawnedTotal   prometheus.Counter
	routinesCompletedTotal prometheus.Counter
	routinesLive           prometheus.Gauge

	queueDepth *prometheus.GaugeVec

	channelBytesRead    prometheus.Counter
	channelBytesWritten prometheus.Counter

	reconnectAttemptsTotal  prometheus.Counter
	reconnectSuccessesTotal prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewRegistry builds a Registry and registers every metric against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		routinesSpawnedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beam_routines_spawned_total",
			Help: "Routines spawned across every scheduler context (routines.n).",
		}),
		routinesCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beam_routines_completed_total",
			Help: "Routines that reached the COMPLETE state (routines.completed.n).",
		}),
		routinesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beam_routines_live",
			Help: "Routines currently spawned but not yet complete.",
		}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "beam_queue_depth",
			Help: "Number of buffered elements per named Queue[T] instance.",
		}, []string{"queue"}),
		channelBytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beam_channel_bytes_read_total",
			Help: "Bytes read off every network.Channel (channel.read.size).",
		}),
		channelBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beam_channel_bytes_written_total",
			Help: "Bytes written to every network.Channel (channel.write.size).",
		}),
		reconnectAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beam_service_client_reconnect_attempts_total",
			Help: "ServiceClient reconnection attempts (reconnect.n).",
		}),
		reconnectSuccessesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beam_service_client_reconnect_successes_total",
			Help: "ServiceClient reconnection attempts that completed login and replay.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beam_http_requests_total",
			Help: "HTTP requests served by a webservletcontainer.Container (request.n).",
		}, []string{"method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beam_http_request_duration_seconds",
			Help:    "HTTP request service latency (request.ns).",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(
		r.routinesSpawnedTotal, r.routinesCompletedTotal, r.routinesLive,
		r.queueDepth, r.channelBytesRead, r.channelBytesWritten,
		r.reconnectAttemptsTotal, r.reconnectSuccessesTotal,
		r.httpRequestsTotal, r.httpRequestDuration,
	)
	return r
}

// RoutineSpawned implements routines.Metrics.
func (r *Registry) RoutineSpawned() {
	r.routinesSpawnedTotal.Inc()
	r.routinesLive.Inc()
}

// RoutineCompleted implements routines.Metrics.
func (r *Registry) RoutineCompleted() {
	r.routinesCompletedTotal.Inc()
	r.routinesLive.Dec()
}

// SetQueueDepth reports the current buffered length of the named queue.
func (r *Registry) SetQueueDepth(name string, depth int) {
	r.queueDepth.WithLabelValues(name).Set(float64(depth))
}

// ChannelRead records n bytes read off some network.Channel.
func (r *Registry) ChannelRead(n int) {
	if n > 0 {
		r.channelBytesRead.Add(float64(n))
	}
}

// ChannelWritten records n bytes written to some network.Channel.
func (r *Registry) ChannelWritten(n int) {
	if n > 0 {
		r.channelBytesWritten.Add(float64(n))
	}
}

// ReconnectAttempt implements services.Metrics.
func (r *Registry) ReconnectAttempt() { r.reconnectAttemptsTotal.Inc() }

// ReconnectSucceeded implements services.Metrics.
func (r *Registry) ReconnectSucceeded() { r.reconnectSuccessesTotal.Inc() }

// RequestServed implements webservletcontainer.Metrics.
func (r *Registry) RequestServed(method, status string, d time.Duration) {
	r.httpRequestsTotal.WithLabelValues(method, status).Inc()
	r.httpRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
