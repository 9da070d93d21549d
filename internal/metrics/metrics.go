package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ovpnapi"

// Metrics holds the counters of conversion runs
type Metrics struct {
	registry *prometheus.Registry

	FilesConverted   *prometheus.CounterVec
	FilesSkipped     *prometheus.CounterVec
	ArchivesFailed   prometheus.Counter
	ArchivesEmpty    prometheus.Counter
	OutputsWritten   *prometheus.CounterVec
	LastRunTimestamp *prometheus.GaugeVec
	LastRunDuration  *prometheus.GaugeVec
}

// New creates the metric set on its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FilesConverted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_converted_total",
			Help:      "Profiles converted into server records.",
		}, []string{"pipeline"}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Profiles skipped because they could not be read.",
		}, []string{"pipeline"}),
		ArchivesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_failed_total",
			Help:      "Archives whose processing was abandoned.",
		}),
		ArchivesEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_empty_total",
			Help:      "Archives that held no profiles.",
		}),
		OutputsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outputs_written_total",
			Help:      "index.json documents written.",
		}, []string{"pipeline"}),
		LastRunTimestamp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}, []string{"pipeline"}),
		LastRunDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}, []string{"pipeline"}),
	}

	m.registry.MustRegister(
		m.FilesConverted,
		m.FilesSkipped,
		m.ArchivesFailed,
		m.ArchivesEmpty,
		m.OutputsWritten,
		m.LastRunTimestamp,
		m.LastRunDuration,
	)

	return m
}

// ObserveRun records when a pipeline run finished and how long it took
func (m *Metrics) ObserveRun(pipeline string, started time.Time) {
	now := time.Now()
	m.LastRunTimestamp.WithLabelValues(pipeline).Set(float64(now.Unix()))
	m.LastRunDuration.WithLabelValues(pipeline).Set(now.Sub(started).Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the node exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
