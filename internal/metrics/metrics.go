// Package metrics exposes Prometheus counters for the monitoring loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the bot's Prometheus instruments.
type Recorder struct {
	cyclesTotal    prometheus.Counter
	cycleDuration  prometheus.Histogram
	alertsTotal    *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	symbolsSkipped *prometheus.CounterVec
}

// New creates a Recorder registered against the default registry.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "volumebot_cycles_total",
			Help: "Total number of completed poll cycles",
		}),
		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "volumebot_cycle_duration_seconds",
			Help:    "Duration of one poll cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volumebot_alerts_total",
				Help: "Delivered spike alerts by trigger reason",
			},
			[]string{"reason"},
		),
		sourceFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volumebot_source_failures_total",
				Help: "Per-exchange fetch failures",
			},
			[]string{"source"},
		),
		symbolsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volumebot_symbols_skipped_total",
				Help: "Symbols skipped in a cycle, by reason",
			},
			[]string{"reason"},
		),
	}
}

// All record methods are nil-safe so callers can run without metrics
// (METRICS_ADDR unset, tests).

// CycleDone records one completed poll cycle.
func (r *Recorder) CycleDone(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(elapsed.Seconds())
}

// AlertSent records a delivered alert.
func (r *Recorder) AlertSent(reason string) {
	if r == nil {
		return
	}
	r.alertsTotal.WithLabelValues(reason).Inc()
}

// SourceFailed records one exchange failing for one symbol/window.
func (r *Recorder) SourceFailed(source string) {
	if r == nil {
		return
	}
	r.sourceFailures.WithLabelValues(source).Inc()
}

// SymbolSkipped records a symbol skipped for the cycle.
func (r *Recorder) SymbolSkipped(reason string) {
	if r == nil {
		return
	}
	r.symbolsSkipped.WithLabelValues(reason).Inc()
}

// Serve exposes /metrics on addr. Blocks until the server stops.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
