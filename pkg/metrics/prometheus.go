package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal   *prometheus.CounterVec
	pauseEvents *prometheus.CounterVec
	riskEvents  *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	sizeFactor  *prometheus.GaugeVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers the recorder's collectors on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasure_canary_runs_total",
				Help: "Canary runs by mode and terminal status",
			},
			[]string{"mode", "status"},
		),
		pauseEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasure_canary_pause_events_total",
				Help: "Pause events emitted by reason code",
			},
			[]string{"code"},
		),
		riskEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasure_canary_risk_events_total",
				Help: "Hard-stop risk events by reason",
			},
			[]string{"reason"},
		),
		runDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "treasure_canary_run_duration_seconds",
				Help:    "Wall time of one canary run",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		sizeFactor: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "treasure_canary_last_size_factor",
				Help: "Final size factor of the last run per scenario",
			},
			[]string{"scenario"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treasure_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "treasure_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records one finished run.
func (r *Recorder) RecordRun(mode, status string, seconds float64) {
	r.runsTotal.WithLabelValues(mode, status).Inc()
	r.runDuration.WithLabelValues(mode).Observe(seconds)
}

func (r *Recorder) RecordPauseEvent(code string) {
	r.pauseEvents.WithLabelValues(code).Inc()
}

func (r *Recorder) RecordRiskEvent(reason string) {
	r.riskEvents.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordSizeFactor(scenario string, v float64) {
	r.sizeFactor.WithLabelValues(scenario).Set(v)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
