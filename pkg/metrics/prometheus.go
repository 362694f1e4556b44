package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal    *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	providerErrors *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	lastPrice      *prometheus.GaugeVec
	signalsTotal   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_cycles_total",
				Help: "Total analysis cycles executed",
			},
			[]string{"result"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalforge_cycle_duration_seconds",
				Help:    "Duration of a full analysis cycle in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
			},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_provider_errors_total",
				Help: "Total provider failures by classified kind",
			},
			[]string{"kind"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalforge_fetch_duration_seconds",
				Help:    "Duration of provider fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalforge_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalforge_signals_total",
				Help: "Total consensus signals by emitted direction",
			},
			[]string{"direction"},
		),
	}
}

// RecordCycle records one completed cycle.
func (r *Recorder) RecordCycle(seconds float64, success bool) {
	result := "success"
	if !success {
		result = "partial"
	}
	r.cyclesTotal.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(seconds)
}

// RecordProviderError records a classified provider failure.
func (r *Recorder) RecordProviderError(kind string) {
	r.providerErrors.WithLabelValues(kind).Inc()
}

// RecordFetchLatency records one provider fetch duration.
func (r *Recorder) RecordFetchLatency(provider string, seconds float64) {
	r.fetchLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordSignal records one emitted consensus signal.
func (r *Recorder) RecordSignal(direction string) {
	r.signalsTotal.WithLabelValues(direction).Inc()
}
