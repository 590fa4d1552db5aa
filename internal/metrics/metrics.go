// Package metrics holds the Prometheus collectors for duel rooms. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reactionduel"

type Metrics struct {
	matchesFinished prometheus.Counter
	rejections      *prometheus.CounterVec
	prematureClicks prometheus.Counter
	persistFailures *prometheus.CounterVec
	reactionTime    prometheus.Histogram
	connections     prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		matchesFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Matches that reached the finished phase.",
		}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_rejections_total",
			Help:      "Rejected player intents by error code.",
		}, []string{"code"}),
		prematureClicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "premature_clicks_total",
			Help:      "Clicks made before the cue was visible.",
		}),
		persistFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Result store writes that failed, by operation.",
		}, []string{"op"}),
		reactionTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reaction_time_seconds",
			Help:      "Credited reaction times.",
			Buckets:   []float64{.1, .15, .2, .25, .3, .35, .4, .5, .75, 1, 2, 5},
		}),
		connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open websocket connections across all rooms.",
		}),
	}
}

func (m *Metrics) MatchFinished() {
	if m == nil {
		return
	}
	m.matchesFinished.Inc()
}

func (m *Metrics) Rejected(code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(code).Inc()
	if code == "premature_click" {
		m.prematureClicks.Inc()
	}
}

func (m *Metrics) PersistFailed(op string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Reaction(d time.Duration) {
	if m == nil {
		return
	}
	m.reactionTime.Observe(d.Seconds())
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
