// Package metrics exposes Prometheus metrics for the relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "powchat"

// Metrics holds all Prometheus metrics for the relay.
type Metrics struct {
	// Connection metrics
	PeersConnected   prometheus.Gauge
	ConnectionsTotal prometheus.Counter

	// Hub metrics
	FramesRelayed   prometheus.Counter
	FramesRejected  prometheus.Counter
	PayloadsDropped prometheus.Counter

	// Proof-of-work metrics
	SolveDuration prometheus.Histogram
}

// New creates the metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PeersConnected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "peers_connected",
			Help:      "Current number of connected peers",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted peer connections",
		}),
		FramesRelayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_relayed_total",
			Help:      "Total number of inbound frames published to the hub",
		}),
		FramesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_rejected_total",
			Help:      "Total number of inbound frames dropped by the gate",
		}),
		PayloadsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "payloads_dropped_total",
			Help:      "Total number of payloads evicted from subscriber backlogs",
		}),
		SolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "solve_duration_seconds",
			Help:      "Proof-of-work search duration in seconds",
			Buckets:   []float64{.0001, .001, .01, .1, .5, 1, 5, 30},
		}),
	}
}

// PeerConnected implements relay.Recorder.
func (m *Metrics) PeerConnected() {
	m.ConnectionsTotal.Inc()
	m.PeersConnected.Inc()
}

// PeerDisconnected implements relay.Recorder.
func (m *Metrics) PeerDisconnected() {
	m.PeersConnected.Dec()
}

// FrameRelayed implements relay.Recorder.
func (m *Metrics) FrameRelayed() {
	m.FramesRelayed.Inc()
}

// FrameRejected implements relay.Recorder.
func (m *Metrics) FrameRejected() {
	m.FramesRejected.Inc()
}

// RecordDropped counts payloads evicted from a subscriber backlog.
func (m *Metrics) RecordDropped(n int) {
	m.PayloadsDropped.Add(float64(n))
}

// RecordSolve records one finished proof-of-work search.
func (m *Metrics) RecordSolve(d time.Duration) {
	m.SolveDuration.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g in the exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
