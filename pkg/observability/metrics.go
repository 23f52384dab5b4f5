package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Turn outcomes recorded on the chat_turns_total counter.
const (
	OutcomeResponded = "responded"
	OutcomeBlocked   = "blocked"
	OutcomeFailed    = "failed"
)

// ChatMetrics instruments the chat pipeline.
type ChatMetrics struct {
	turns           *prometheus.CounterVec
	providerLatency prometheus.Histogram
}

// NewChatMetrics registers the chat collectors on reg. Tests pass a fresh
// registry; the server passes prometheus.DefaultRegisterer.
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	factory := promauto.With(reg)
	return &ChatMetrics{
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Completed chat turns by terminal outcome.",
		}, []string{"outcome"}),
		providerLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_provider_latency_seconds",
			Help:    "Wall-clock latency of reply provider calls.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

// TurnCompleted counts one finished turn.
func (m *ChatMetrics) TurnCompleted(outcome string) {
	m.turns.WithLabelValues(outcome).Inc()
}

// ObserveProviderLatency records one provider call duration.
func (m *ChatMetrics) ObserveProviderLatency(latencyMs int64) {
	m.providerLatency.Observe(float64(latencyMs) / 1000)
}
