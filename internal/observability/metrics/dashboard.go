package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics records fetch cycles, uploads and circuit breaker state.
type DashboardMetrics struct {
	service string

	fetchTotal        *prometheus.CounterVec
	fetchDuration     *prometheus.HistogramVec
	staleTotal        *prometheus.CounterVec
	uploadTotal       *prometheus.CounterVec
	uploadDuration    *prometheus.HistogramVec
	uploadInFlight    prometheus.Gauge
	breakerState      *prometheus.GaugeVec
	breakerTransition *prometheus.CounterVec
}

func NewDashboardMetrics(service string, registerer prometheus.Registerer) *DashboardMetrics {
	fetchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "cycles_total",
			Help:      "Applied fetch cycles by outcome.",
		},
		[]string{"service", "outcome"},
	)
	fetchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "cycle_duration_seconds",
			Help:      "Fetch cycle duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	staleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "stale_cycles_total",
			Help:      "Fetch cycles discarded because a later cycle was already applied.",
		},
		[]string{"service", "outcome"},
	)
	uploadTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "total",
			Help:      "Upload submissions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	uploadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Upload duration in seconds by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "outcome"},
	)
	uploadInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "in_flight",
			Help:      "1 while an upload is in flight.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"service", "operation"},
	)
	breakerTransition := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions.",
		},
		[]string{"service", "operation", "to"},
	)

	registerer.MustRegister(
		fetchTotal,
		fetchDuration,
		staleTotal,
		uploadTotal,
		uploadDuration,
		uploadInFlight,
		breakerState,
		breakerTransition,
	)

	return &DashboardMetrics{
		service:           service,
		fetchTotal:        fetchTotal,
		fetchDuration:     fetchDuration,
		staleTotal:        staleTotal,
		uploadTotal:       uploadTotal,
		uploadDuration:    uploadDuration,
		uploadInFlight:    uploadInFlight,
		breakerState:      breakerState,
		breakerTransition: breakerTransition,
	}
}

func (m *DashboardMetrics) ObserveFetchCycle(outcome string, duration time.Duration) {
	m.fetchTotal.WithLabelValues(m.service, outcome).Inc()
	m.fetchDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
}

func (m *DashboardMetrics) ObserveStaleCycle(outcome string) {
	m.staleTotal.WithLabelValues(m.service, outcome).Inc()
}

func (m *DashboardMetrics) ObserveUpload(outcome string, duration time.Duration) {
	m.uploadTotal.WithLabelValues(m.service, outcome).Inc()
	if duration > 0 {
		m.uploadDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
	}
}

func (m *DashboardMetrics) SetUploadInFlight(inFlight bool) {
	if inFlight {
		m.uploadInFlight.Set(1)
		return
	}
	m.uploadInFlight.Set(0)
}

// ObserveBreakerState matches resilience.Config.OnBreakerStateChange.
func (m *DashboardMetrics) ObserveBreakerState(operation, _ string, to string) {
	value := 0.0
	switch to {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
	m.breakerTransition.WithLabelValues(m.service, operation, to).Inc()
}
