package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Scan subsystem

	// ScanDuration tracks how long full walks take.
	ScanDuration prometheus.Histogram

	// FilesFoundTotal counts disposal candidates found across all scans.
	FilesFoundTotal prometheus.Counter

	// BytesFoundTotal counts candidate bytes found across all scans.
	BytesFoundTotal prometheus.Counter

	// EntriesSkippedTotal counts walk entries skipped, labeled by cause
	// (not_found, access_denied, other_io).
	EntriesSkippedTotal *prometheus.CounterVec

	// RootFreeBytes reports free space per scanned root.
	RootFreeBytes *prometheus.GaugeVec

	// Purge subsystem

	// FilesDeletedTotal counts files actually removed.
	FilesDeletedTotal prometheus.Counter

	// BytesFreedTotal counts bytes actually freed.
	BytesFreedTotal prometheus.Counter

	// DeletionsSkipped counts delete requests refused by the safety gate or
	// racing deletions.
	DeletionsSkipped prometheus.Counter

	// ErrorsTotal counts unexpected operational errors.
	ErrorsTotal prometheus.Counter
)

// Init initializes and registers all metrics. Safe to call multiple times.
func Init() {
	initOnce.Do(func() {
		ScanDuration = NewDurationHistogram(
			"junksweep_scan_duration_seconds",
			"Duration of full scan walks in seconds.",
		)
		FilesFoundTotal = NewCounter(
			"junksweep_files_found_total",
			"Total disposal candidates found by scans.",
		)
		BytesFoundTotal = NewCounter(
			"junksweep_bytes_found_total",
			"Total candidate bytes found by scans.",
		)
		EntriesSkippedTotal = NewCounterVec(
			"junksweep_entries_skipped_total",
			"Walk entries skipped, by cause.",
			[]string{"cause"},
		)
		RootFreeBytes = NewGaugeVec(
			"junksweep_root_free_bytes",
			"Free bytes on the filesystem holding each scan root.",
			[]string{"root"},
		)
		FilesDeletedTotal = NewCounter(
			"junksweep_files_deleted_total",
			"Total files deleted.",
		)
		BytesFreedTotal = NewCounter(
			"junksweep_bytes_freed_total",
			"Total bytes freed by deletions.",
		)
		DeletionsSkipped = NewCounter(
			"junksweep_deletions_skipped_total",
			"Delete requests refused or skipped.",
		)
		ErrorsTotal = NewCounter(
			"junksweep_errors_total",
			"Unexpected operational errors.",
		)

		prometheus.MustRegister(
			ScanDuration,
			FilesFoundTotal,
			BytesFoundTotal,
			EntriesSkippedTotal,
			RootFreeBytes,
			FilesDeletedTotal,
			BytesFreedTotal,
			DeletionsSkipped,
			ErrorsTotal,
		)
	})
}

// RecordSkips adds per-cause skip counts from one walk.
func RecordSkips(notFound, accessDenied, otherIO int64) {
	EntriesSkippedTotal.WithLabelValues("not_found").Add(float64(notFound))
	EntriesSkippedTotal.WithLabelValues("access_denied").Add(float64(accessDenied))
	EntriesSkippedTotal.WithLabelValues("other_io").Add(float64(otherIO))
}
