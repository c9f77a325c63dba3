package migration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statementDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobdb_migration_statement_duration_seconds",
			Help:    "Distribution of time taken to apply each migration statement",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms -> ~10s
		},
		[]string{"migration", "statement"},
	)
	statementErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobdb_migration_statement_errors_total",
			Help: "Total number of failed migration statements, labelled by failure kind",
		},
		[]string{"migration", "kind"},
	)
	schemaVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobdb_migration_schema_version",
			Help: "Schema version recorded in the migration table after the last run",
		},
	)
)
