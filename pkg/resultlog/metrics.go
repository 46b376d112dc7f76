package resultlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// importsTotal counts finished imports by outcome.
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdtp_bulk_imports_total",
			Help: "Total number of bulk imports by table and status",
		},
		[]string{"table", "status"},
	)

	// rowsImportedTotal counts rows of successful imports.
	rowsImportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdtp_bulk_rows_imported_total",
			Help: "Total number of rows written by successful bulk imports",
		},
		[]string{"table"},
	)

	statementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdtp_bulk_statements_total",
			Help: "Total number of INSERT statements sent by successful bulk imports",
		},
		[]string{"table"},
	)

	importDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tdtp_bulk_import_duration_seconds",
			Help:    "Wall time of bulk imports",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"table"},
	)
)

// Observe records summary in the process metrics.
func Observe(summary ImportSummary) {
	importsTotal.WithLabelValues(summary.Table, summary.Status).Inc()
	importDuration.WithLabelValues(summary.Table).Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	if summary.Status != "success" {
		return
	}
	rowsImportedTotal.WithLabelValues(summary.Table).Add(float64(summary.Rows))
	statementsTotal.WithLabelValues(summary.Table).Add(float64(summary.Statements))
}

// WriteMetrics dumps the default registry in the text format, for the
// node_exporter textfile collector.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
