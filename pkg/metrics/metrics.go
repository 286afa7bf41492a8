// Package metrics provides Prometheus metrics for the autograde CLI.
//
// The tool is short-lived, so nothing is served over HTTP. Metrics are
// collected on a private registry and can be dumped to a textfile in the
// Prometheus exposition format (textfile-collector friendly) or gathered
// for logging at the end of a run.
package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const defaultNamespace = "autograde"

// Manager owns the registry and all collectors for one process.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	buildsTotal     prometheus.Counter
	runsTotal       prometheus.Counter
	runFailures     prometheus.Counter
	runDuration     prometheus.Histogram
	archivesScanned prometheus.Counter
	archivesSkipped prometheus.Counter
	rowsWritten     prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// NewManager creates a Manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.buildsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "image_builds_total",
		Help:      "Container image builds attempted.",
	})
	m.runsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "container_runs_total",
		Help:      "Grading container runs attempted.",
	})
	m.runFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "container_run_failures_total",
		Help:      "Grading container runs that exited non-zero.",
	})
	m.runDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "container_run_duration_seconds",
		Help:      "Wall-clock duration of grading container runs.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	m.archivesScanned = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "result_archives_scanned_total",
		Help:      "Result archives found while summarizing.",
	})
	m.archivesSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "result_archives_skipped_total",
		Help:      "Result archives skipped because the result record was missing or unreadable.",
	})
	m.rowsWritten = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "summary_rows_written_total",
		Help:      "Rows written to the summary CSV.",
	})

	return m
}

// RecordBuild counts one image build attempt.
func (m *Manager) RecordBuild() { m.buildsTotal.Inc() }

// RecordRun counts one container run with its exit code and duration.
func (m *Manager) RecordRun(exitCode int, d time.Duration) {
	m.runsTotal.Inc()
	if exitCode != 0 {
		m.runFailures.Inc()
	}
	m.runDuration.Observe(d.Seconds())
}

// RecordArchiveScanned counts one archive found during a summary scan.
func (m *Manager) RecordArchiveScanned() { m.archivesScanned.Inc() }

// RecordArchiveSkipped counts one archive dropped from a summary scan.
func (m *Manager) RecordArchiveSkipped() { m.archivesSkipped.Inc() }

// AddRowsWritten counts rows emitted into the summary CSV.
func (m *Manager) AddRowsWritten(n int) { m.rowsWritten.Add(float64(n)) }

// Gather returns the current metric families.
func (m *Manager) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// WriteTextfile dumps all metrics to path in the text exposition format.
func (m *Manager) WriteTextfile(path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, fam := range families {
		if _, err := expfmt.MetricFamilyToText(f, fam); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
