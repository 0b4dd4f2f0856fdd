package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prune subsystem metrics
var (
	// DirsDeletedTotal tracks directories removed, walk and ancestor cascade alike
	DirsDeletedTotal prometheus.Counter

	// AncestorsDeletedTotal tracks directories removed by the ancestor cascade
	AncestorsDeletedTotal prometheus.Counter

	// DeleteErrorsTotal tracks approved directories that failed to delete
	DeleteErrorsTotal prometheus.Counter

	// DirsEvaluatedTotal tracks oracle decisions by primary reason
	DirsEvaluatedTotal *prometheus.CounterVec

	// PruneDuration tracks how long a prune run takes
	PruneDuration prometheus.Histogram

	// LastRunTimestamp records Unix timestamp of the last prune run
	LastRunTimestamp prometheus.Gauge

	// LastRunDeleted records how many directories the last run removed
	LastRunDeleted prometheus.Gauge
)

// initPruneMetrics initializes all prune subsystem metrics
func initPruneMetrics() {
	DirsDeletedTotal = NewCounter(
		"emptydir_dirs_deleted_total",
		"Total number of directories deleted.",
	)

	AncestorsDeletedTotal = NewCounter(
		"emptydir_ancestors_deleted_total",
		"Total number of ancestor directories deleted after their subtree emptied.",
	)

	DeleteErrorsTotal = NewCounter(
		"emptydir_delete_errors_total",
		"Total number of approved directories that could not be deleted.",
	)

	DirsEvaluatedTotal = NewCounterVec(
		"emptydir_dirs_evaluated_total",
		"Total number of directories evaluated, by decision reason.",
		[]string{"reason"},
	)

	PruneDuration = NewDurationHistogram(
		"emptydir_prune_duration_seconds",
		"Duration of prune runs in seconds.",
	)

	LastRunTimestamp = NewGauge(
		"emptydir_last_run_timestamp",
		"Timestamp of the last prune run (Unix epoch seconds).",
	)

	LastRunDeleted = NewGauge(
		"emptydir_last_run_deleted",
		"Directories deleted by the last prune run.",
	)
}

// registerPruneMetrics registers all prune metrics with Registry
func registerPruneMetrics() {
	Registry.MustRegister(DirsDeletedTotal)
	Registry.MustRegister(AncestorsDeletedTotal)
	Registry.MustRegister(DeleteErrorsTotal)
	Registry.MustRegister(DirsEvaluatedTotal)
	Registry.MustRegister(PruneDuration)
	Registry.MustRegister(LastRunTimestamp)
	Registry.MustRegister(LastRunDeleted)
}

// RecordEvaluation counts one oracle decision
func RecordEvaluation(reason string) {
	DirsEvaluatedTotal.WithLabelValues(reason).Inc()
}

// RecordDeletion counts one successful removal
func RecordDeletion(ancestor bool) {
	DirsDeletedTotal.Inc()
	if ancestor {
		AncestorsDeletedTotal.Inc()
	}
}

// RecordDeleteError counts one failed removal
func RecordDeleteError() {
	DeleteErrorsTotal.Inc()
}

// RecordRun updates the per-run gauges and duration histogram
func RecordRun(started time.Time, deleted int) {
	PruneDuration.Observe(time.Since(started).Seconds())
	LastRunTimestamp.Set(float64(time.Now().Unix()))
	LastRunDeleted.Set(float64(deleted))
}
