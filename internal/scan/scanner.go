package scan

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"junksweep/internal/limiter"
	"junksweep/internal/rules"
	"junksweep/internal/safety"
	"junksweep/internal/volumes"
)

// DefaultMaxDepth bounds recursion below each scan root.
const DefaultMaxDepth = 10

// ErrScanActive is returned when a Scan is started while another walk on the
// same Scanner instance is still running. The accumulator belongs to the
// in-flight walk; overlapping use is rejected rather than corrupted.
var ErrScanActive = errors.New("scan already in progress on this scanner")

var errNoRoots = errors.New("no scan roots available")

// Scanner walks directory trees looking for disposal candidates. The safety
// checker prunes protected subtrees before they are ever listed; the rule
// table assigns each surviving file a category.
type Scanner struct {
	checker  *safety.Checker
	table    []rules.Rule
	logger   Logger
	maxDepth int
	progress func(dir string)
	pacer    *limiter.Pacer
	busy     atomic.Bool

	// listRoots supplies scan roots when the caller passes none.
	listRoots func() ([]string, error)
}

// NewScanner creates a Scanner over the given checker and rule table.
func NewScanner(checker *safety.Checker, table []rules.Rule, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		checker:   checker,
		table:     table,
		logger:    &stdLogger{Logger: logger},
		maxDepth:  DefaultMaxDepth,
		listRoots: volumes.Roots,
	}
}

// SetMaxDepth overrides the recursion bound. Values below 1 are ignored.
func (s *Scanner) SetMaxDepth(depth int) {
	if depth >= 1 {
		s.maxDepth = depth
	}
}

// SetProgress installs an observer invoked synchronously with each directory
// as it is visited. Informational only; must not block for long.
func (s *Scanner) SetProgress(fn func(dir string)) {
	s.progress = fn
}

// SetPacer installs a CPU pacer consulted once per directory.
func (s *Scanner) SetPacer(p *limiter.Pacer) {
	s.pacer = p
}

// Scan walks the given roots and returns a fresh Result. Empty roots means
// scan the whole system: mounted volumes are enumerated and used instead.
// Only one scan may be active per Scanner; concurrent calls get ErrScanActive.
func (s *Scanner) Scan(roots []string) (*Result, error) {
	return s.scan(roots, s.progress)
}

func (s *Scanner) scan(roots []string, progress func(string)) (*Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrScanActive
	}
	defer s.busy.Store(false)

	if len(roots) == 0 {
		var err error
		roots, err = s.listRoots()
		if err != nil {
			return nil, fmt.Errorf("enumerate volumes: %w", err)
		}
		if len(roots) == 0 {
			return nil, errNoRoots
		}
		s.logger.Info("No roots supplied, scanning mounted volumes", "roots", roots)
	}

	start := time.Now()
	res := &Result{}

	for _, root := range roots {
		abs, err := safety.NormalizePath(root)
		if err != nil {
			s.logger.Warn("Skipping unresolvable root", "root", root, "error", err)
			res.Skipped.OtherIO++
			continue
		}
		s.walkDir(abs, 0, start, res, progress)
	}

	s.logger.Info("Scan complete",
		"roots", len(roots),
		"records", len(res.Records),
		"total_bytes", res.TotalBytes,
		"skipped", res.Skipped.Total(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// walkDir visits one directory at the given depth. Every failure here is a
// per-item outcome: counted, then skipped, never propagated.
func (s *Scanner) walkDir(dir string, depth int, now time.Time, res *Result, progress func(string)) {
	if depth >= s.maxDepth {
		return
	}

	// Prune only on hard directory protection. Other rejections (extension,
	// filename, hidden) apply to files, not to the subtree.
	if v := s.checker.Check(dir); !v.Safe && v.Rule == safety.RuleProtectedDir {
		s.logger.Debug("Pruning protected directory", "dir", dir, "detail", v.Detail)
		return
	}

	info, err := os.Stat(dir)
	if err != nil {
		countSkip(&res.Skipped, err)
		return
	}
	if !info.IsDir() {
		return
	}

	if progress != nil {
		progress(dir)
	}
	if s.pacer != nil {
		s.pacer.Pace()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Listing failure skips this directory entirely; siblings continue.
		countSkip(&res.Skipped, err)
		s.logger.Warn("Cannot list directory", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			s.walkDir(path, depth+1, now, res, progress)
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		rec, ok := s.analyzeFile(path, now, &res.Skipped)
		if ok {
			res.Records = append(res.Records, rec)
			res.TotalBytes += rec.Size
		}
	}
}

// analyzeFile decides whether one regular file is a disposal candidate.
// Unsafe, unstattable, and uncategorized files are all discarded; only files
// that are both safe and classified produce a record.
func (s *Scanner) analyzeFile(path string, now time.Time, skipped *Skipped) (Record, bool) {
	if safe, _ := s.checker.IsSafeToDelete(path); !safe {
		return Record{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		countSkip(skipped, err)
		return Record{}, false
	}

	norm, err := safety.NormalizePath(path)
	if err != nil {
		skipped.OtherIO++
		return Record{}, false
	}
	norm = strings.ToLower(norm)
	name := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(path))

	category, ok := rules.Classify(s.table, name, ext, norm, info.ModTime(), now)
	if !ok {
		return Record{}, false
	}

	return Record{
		Path:         path,
		Size:         info.Size(),
		Category:     category,
		LastModified: info.ModTime(),
		Safe:         true,
	}, true
}

func countSkip(s *Skipped, err error) {
	switch {
	case os.IsNotExist(err):
		s.NotFound++
	case os.IsPermission(err):
		s.AccessDenied++
	default:
		s.OtherIO++
	}
}
