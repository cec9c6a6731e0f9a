package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

const namespace = "xdraft"

// Recorder owns a private registry so several recorders can coexist in tests.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastFailures   prometheus.Gauge
	lastHitters    prometheus.Gauge
	lastPitchers   prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_lookups_total",
			Help:      "Player eligibility lookups by outcome",
		}, []string{"status"}),
		lookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eligibility_lookup_duration_seconds",
			Help:      "Duration of a single eligibility lookup",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32},
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "init_runs_total",
			Help:      "Cache initialisations by terminal state",
		}, []string{"state"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "init_run_duration_seconds",
			Help:      "Wall time of a cache initialisation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		lastFailures: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_lookup_failures",
			Help:      "Eligibility lookups that failed in the latest run",
		}),
		lastHitters: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_hitters",
			Help:      "Hitters cached by the latest complete run",
		}),
		lastPitchers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_pitchers",
			Help:      "Pitchers cached by the latest complete run",
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time the latest complete run finished",
		}),
	}
}

func (r *Recorder) ObserveLookup(status domain.LookupStatus, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(string(status)).Inc()
	r.lookupDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveRun(run domain.InitRun) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(string(run.State)).Inc()
	if !run.FinishedAt.IsZero() && !run.StartedAt.IsZero() {
		r.runDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	r.lastFailures.Set(float64(run.LookupFailures))
	if run.State == domain.RunComplete {
		r.lastHitters.Set(float64(run.Hitters))
		r.lastPitchers.Set(float64(run.Pitchers))
		r.lastSuccess.Set(float64(run.FinishedAt.Unix()))
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
