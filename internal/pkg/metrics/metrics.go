// Package metrics exposes prometheus collectors for real-time delivery.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Delivered   *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
	Connections prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to
// expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Delivered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chathub",
			Subsystem: "ws",
			Name:      "events_delivered_total",
			Help:      "Events pushed to a live connection.",
		}, []string{"event"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chathub",
			Subsystem: "ws",
			Name:      "events_dropped_total",
			Help:      "Events dropped because the recipient was offline or its buffer was full.",
		}, []string{"event"}),
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "chathub",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Live websocket connections.",
		}),
	}
}
