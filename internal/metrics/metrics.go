// Package metrics records masterdata update results and pushes them to a
// Prometheus Pushgateway at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

const (
	namespace = "gdxsv"
	subsystem = "masterdata"

	// Job is the Pushgateway job name.
	Job = "masterdata_update"
)

// Failure stages.
const (
	StageDownload = "download"
	StageExtract  = "extract"
	StageLoad     = "load"
	StageReload   = "reload"
)

// Recorder holds the metrics of one update run in its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	rowsLoaded  *prometheus.GaugeVec
	tables      prometheus.Gauge
	failures    *prometheus.CounterVec
	lastSuccess prometheus.Gauge
	duration    prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsLoaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rows",
				Help:      "rows written to each masterdata table by the last update.",
			}, []string{"table"}),
		tables: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tables",
				Help:      "tables written by the last update.",
			}),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "failures_total",
				Help:      "failed updates by stage.",
			}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "unix time of the last successful update.",
			}),
		duration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "duration of the last update.",
			}),
	}
	r.registry.MustRegister(r.rowsLoaded, r.tables, r.failures, r.lastSuccess, r.duration)
	return r
}

// Registry returns the registry pushed by Push.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveTable records the rows written to table.
func (r *Recorder) ObserveTable(table string, rows int) {
	r.rowsLoaded.WithLabelValues(table).Set(float64(rows))
}

// ObserveFailure counts a failed update at stage and records its duration.
func (r *Recorder) ObserveFailure(stage string, elapsed time.Duration) {
	r.failures.WithLabelValues(stage).Inc()
	r.duration.Set(elapsed.Seconds())
}

// ObserveSuccess records a completed update.
func (r *Recorder) ObserveSuccess(tables int, elapsed time.Duration, now time.Time) {
	r.tables.Set(float64(tables))
	r.duration.Set(elapsed.Seconds())
	r.lastSuccess.Set(float64(now.Unix()))
}

// Push replaces the job's metrics on the Pushgateway at url. An empty url
// disables pushing.
func (r *Recorder) Push(url string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, Job).Gatherer(r.registry).Push(); err != nil {
		return err
	}
	log.Debug().Str("url", url).Msg("Pushed metrics")
	return nil
}
