package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency of console API requests by chi route pattern
	RequestDuration *prometheus.HistogramVec

	// Gate outcomes
	GateDecisions *prometheus.CounterVec
	GateFailures  prometheus.Counter

	// Ledger and signature writes by result
	LedgerWrites *prometheus.CounterVec

	// Welcome mail delivery
	MailSent            *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec

	// Consent audit backlog
	AuditBufferFill prometheus.Gauge
}

// New registers the collectors on reg. A nil reg gets a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "busapp_http_request_duration_seconds",
			Help:    "Histogram of console API request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),

		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "busapp_gate_decisions_total",
			Help: "Onboarding gate decisions by entry route and destination.",
		}, []string{"entry", "destination"}),

		GateFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "busapp_gate_failures_total",
			Help: "Gate evaluations aborted by a failed lookup.",
		}),

		LedgerWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "busapp_ledger_writes_total",
			Help: "User policy and signature upserts by result.",
		}, []string{"record", "result"}),

		MailSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "busapp_mail_sent_total",
			Help: "Transactional mails by template and result.",
		}, []string{"template", "result"}),

		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "busapp_circuit_breaker_state",
			Help: "Current state of a circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"name"}),

		AuditBufferFill: f.NewGauge(prometheus.GaugeOpts{
			Name: "busapp_consent_audit_buffer",
			Help: "Consent events waiting to be flushed.",
		}),
	}
}
