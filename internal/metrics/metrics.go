package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the confirmation flow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	confirmations *prometheus.CounterVec
	providerCalls *prometheus.HistogramVec
	events        *prometheus.CounterVec
	discarded     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invader_payment",
			Name:      "confirmations_total",
			Help:      "Payment confirmations by step and outcome.",
		}, []string{"step", "outcome"}),
		providerCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invader_payment",
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of payment provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invader_payment",
			Name:      "transaction_events_total",
			Help:      "Transaction events by state and result.",
		}, []string{"state", "result"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invader_payment",
			Name:      "discarded_messages_total",
			Help:      "Queued messages dead-lettered without being recorded, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.confirmations, m.providerCalls, m.events, m.discarded)
	return m
}

// ObserveConfirmation counts one confirmation outcome
func (m *Metrics) ObserveConfirmation(step, outcome string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(step, outcome).Inc()
}

// ObserveProviderCall records the duration of a provider call started at start
func (m *Metrics) ObserveProviderCall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.providerCalls.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
}

// ObserveEvent counts a published or recorded transaction event
func (m *Metrics) ObserveEvent(state string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(state, result).Inc()
}

// ObserveDiscardedMessage counts a message that will never be recorded
func (m *Metrics) ObserveDiscardedMessage(reason string) {
	if m == nil {
		return
	}
	m.discarded.WithLabelValues(reason).Inc()
}
