// Package purge performs the actual deletion of operator-approved paths.
// Deletion is permanent: there is no trash, no backup, no rollback. Callers
// must collect explicit confirmation before invoking Delete.
package purge

import (
	"fmt"
	"log"
	"os"

	"junksweep/internal/fsops"
	"junksweep/internal/history"
	"junksweep/internal/metrics"
	"junksweep/internal/safety"
)

// Logger interface for structured logging in purge
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Executor deletes approved paths, re-validating each against the safety
// gate immediately before removal. Scan-time verdicts are never trusted: the
// filesystem may have changed since the walk.
type Executor struct {
	checker    *safety.Checker
	deleter    fsops.Deleter
	logger     Logger
	db         *history.DB
	dryRun     bool
	categories map[string]string
}

// NewExecutor creates an Executor. db may be nil to skip history recording.
func NewExecutor(checker *safety.Checker, logger *log.Logger, db *history.DB, dryRun bool) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		checker: checker,
		deleter: fsops.OSDeleter{},
		logger:  &stdLogger{Logger: logger},
		db:      db,
		dryRun:  dryRun,
	}
}

// SetDeleter replaces the filesystem deleter; tests use this to prove that
// rejected paths and dry-run mode never reach a delete syscall.
func (e *Executor) SetDeleter(d fsops.Deleter) {
	e.deleter = d
}

// SetCategories supplies the scan-time category per path so history records
// carry it. Paths without an entry are recorded with an empty category.
func (e *Executor) SetCategories(byPath map[string]string) {
	e.categories = byPath
}

// Delete removes each path independently and reports a per-path outcome.
// true means the file was removed (or would be, in dry-run); false means the
// path was rejected by the safety gate, no longer exists, or failed to
// delete. No outcome affects any other path.
func (e *Executor) Delete(paths []string) map[string]bool {
	results := make(map[string]bool, len(paths))

	for _, path := range paths {
		results[path] = e.deleteOne(path)
	}

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	e.logger.Info("Deletion batch complete",
		"requested", len(paths),
		"succeeded", succeeded,
		"failed", len(paths)-succeeded,
		"dry_run", e.dryRun,
	)
	return results
}

func (e *Executor) deleteOne(path string) bool {
	if safe, reason := e.checker.IsSafeToDelete(path); !safe {
		e.logger.Info("Refusing unsafe path", "path", path, "reason", reason)
		e.record(history.ActionSkip, path, 0, reason)
		metrics.DeletionsSkipped.Inc()
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			e.logger.Info("Path no longer exists", "path", path)
			e.record(history.ActionSkip, path, 0, "not found")
		} else {
			e.logger.Error("Cannot stat path", "path", path, "error", err)
			e.record(history.ActionError, path, 0, err.Error())
			metrics.ErrorsTotal.Inc()
		}
		return false
	}
	size := info.Size()

	if e.dryRun {
		e.logger.Info("[DRY RUN] Would delete file", "path", path, "size", size)
		e.record(history.ActionDryRun, path, size, "")
		return true
	}

	if err := e.deleter.Remove(path); err != nil {
		e.logger.Error("Failed to delete", "path", path, "error", err)
		e.record(history.ActionError, path, size, err.Error())
		metrics.ErrorsTotal.Inc()
		return false
	}

	e.record(history.ActionDelete, path, size, "")
	metrics.FilesDeletedTotal.Inc()
	metrics.BytesFreedTotal.Add(float64(size))
	return true
}

func (e *Executor) record(action, path string, size int64, reason string) {
	if e.db == nil {
		return
	}
	if err := e.db.Record(action, path, size, e.categories[path], reason); err != nil {
		// History is an audit aid; its failure never blocks deletion.
		e.logger.Error("Failed to record history", "path", path, "error", err)
	}
}
