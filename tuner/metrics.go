package tuner

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

// Metrics contains the Prometheus metrics of a detection loop
type Metrics struct {
	TicksTotal       *prometheus.CounterVec
	DetectDuration   *prometheus.HistogramVec
	LastFrequency    *prometheus.GaugeVec
	LastClarity      *prometheus.GaugeVec
	SourceErrors     prometheus.Counter
	LoopStateChanges *prometheus.CounterVec
}

// NewMetrics creates the loop metrics and registers them with registry
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flutetuner_estimates_total",
				Help: "Estimates produced, partitioned by method and outcome (detected or rejection reason).",
			},
			[]string{"method", "outcome"},
		),
		DetectDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flutetuner_detect_duration_seconds",
				Help:    "Time taken by one detector over one window",
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~80ms
			},
			[]string{"method"},
		),
		LastFrequency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flutetuner_last_frequency_hertz",
				Help: "Most recent detected frequency",
			},
			[]string{"method"},
		),
		LastClarity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flutetuner_last_clarity",
				Help: "Clarity of the most recent estimate, detected or not",
			},
			[]string{"method"},
		),
		SourceErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flutetuner_source_errors_total",
				Help: "Window source failures other than end of stream",
			},
		),
		LoopStateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flutetuner_loop_state_changes_total",
				Help: "Detection loop state transitions, partitioned by the state entered",
			},
			[]string{"state"},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register tuner metrics: %w", err)
	}
	return m, nil
}

// RecordEstimate records one detector run
func (m *Metrics) RecordEstimate(est tonal.PitchEstimate, elapsed time.Duration) {
	method := est.Method.String()

	outcome := "detected"
	if !est.Detected {
		outcome = est.Rejection.String()
	}
	m.TicksTotal.WithLabelValues(method, outcome).Inc()
	m.DetectDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.LastClarity.WithLabelValues(method).Set(est.Clarity)
	if est.Detected {
		m.LastFrequency.WithLabelValues(method).Set(est.Frequency)
	}
}

func (m *Metrics) RecordSourceError() {
	m.SourceErrors.Inc()
}

func (m *Metrics) RecordState(state State) {
	m.LoopStateChanges.WithLabelValues(state.String()).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.TicksTotal.Describe(ch)
	m.DetectDuration.Describe(ch)
	m.LastFrequency.Describe(ch)
	m.LastClarity.Describe(ch)
	ch <- m.SourceErrors.Desc()
	m.LoopStateChanges.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.TicksTotal.Collect(ch)
	m.DetectDuration.Collect(ch)
	m.LastFrequency.Collect(ch)
	m.LastClarity.Collect(ch)
	ch <- m.SourceErrors
	m.LoopStateChanges.Collect(ch)
}
