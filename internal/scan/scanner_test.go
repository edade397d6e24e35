package scan

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"junksweep/internal/rules"
	"junksweep/internal/safety"
)

// openChecker returns a checker with no protections, so tests control
// inclusion purely through the rule table.
func openChecker() *safety.Checker {
	return safety.NewCheckerFromTables(nil, nil, nil, nil)
}

func testTable() []rules.Rule {
	return []rules.Rule{
		{Name: "logs", Extensions: []string{".log"}},
		{Name: "temporary", Extensions: []string{".tmp"}},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func recordPaths(res *Result) []string {
	var paths []string
	for _, r := range res.Records {
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	return paths
}

func TestScanFindsCandidatesAndTotals(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "junk", "a.log"), "aaaa")
	writeFile(t, filepath.Join(tmp, "junk", "b.tmp"), "bb")
	writeFile(t, filepath.Join(tmp, "docs", "keep.pdf"), "cccccc")

	s := NewScanner(openChecker(), testTable(), nil)
	res, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(res.Records), recordPaths(res))
	}
	if res.TotalBytes != 6 {
		t.Errorf("TotalBytes = %d, expected 6", res.TotalBytes)
	}

	byCat := res.ByCategory()
	if len(byCat["logs"]) != 1 || len(byCat["temporary"]) != 1 {
		t.Errorf("unexpected grouping: %v", byCat)
	}
	for _, rec := range res.Records {
		if !rec.Safe {
			t.Errorf("record %s not marked safe", rec.Path)
		}
		if rec.LastModified.IsZero() {
			t.Errorf("record %s missing modification time", rec.Path)
		}
	}
}

// TestProtectedSubtreePruned verifies that files under a hard-protected
// directory are never reported, even when they would match a rule.
func TestProtectedSubtreePruned(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "system", "core.log"), "x")
	writeFile(t, filepath.Join(tmp, "system", "deep", "more.log"), "x")
	writeFile(t, filepath.Join(tmp, "ok", "app.log"), "x")

	checker := safety.NewCheckerFromTables(
		[]string{filepath.Join(tmp, "system")}, nil, nil, nil)
	s := NewScanner(checker, testTable(), nil)

	res, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{filepath.Join(tmp, "ok", "app.log")}
	got := recordPaths(res)
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("records = %v, expected %v", got, want)
	}
}

// TestUnsafeFilesDiscarded verifies per-file safety rejections (extension,
// hidden) drop the file without pruning its directory.
func TestUnsafeFilesDiscarded(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "d", "blocked.log"), "x")
	writeFile(t, filepath.Join(tmp, "d", ".hidden.tmp"), "x")
	writeFile(t, filepath.Join(tmp, "d", "fine.tmp"), "x")

	checker := safety.NewCheckerFromTables(nil, []string{".log"}, nil, nil)
	s := NewScanner(checker, testTable(), nil)

	res, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := recordPaths(res)
	want := filepath.Join(tmp, "d", "fine.tmp")
	if len(got) != 1 || got[0] != want {
		t.Errorf("records = %v, expected only %v", got, want)
	}
}

func TestMaxDepthBoundsRecursion(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "l1", "shallow.log"), "x")
	writeFile(t, filepath.Join(tmp, "l1", "l2", "deep.log"), "x")

	s := NewScanner(openChecker(), testTable(), nil)
	s.SetMaxDepth(2)

	res, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := recordPaths(res)
	want := filepath.Join(tmp, "l1", "shallow.log")
	if len(got) != 1 || got[0] != want {
		t.Errorf("records = %v, expected only %v (depth bound)", got, want)
	}
}

func TestProgressObserver(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "sub", "a.log"), "x")

	var visited []string
	s := NewScanner(openChecker(), testTable(), nil)
	s.SetProgress(func(dir string) { visited = append(visited, dir) })

	if _, err := s.Scan([]string{tmp}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	seen := make(map[string]bool, len(visited))
	for _, d := range visited {
		seen[d] = true
	}
	if !seen[tmp] || !seen[filepath.Join(tmp, "sub")] {
		t.Errorf("progress observer missed directories, saw %v", visited)
	}
}

func TestMissingRootIsNotFatal(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.log"), "x")

	s := NewScanner(openChecker(), testTable(), nil)
	res, err := s.Scan([]string{filepath.Join(tmp, "nope"), tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(res.Records) != 1 {
		t.Errorf("expected surviving root still scanned, got %d records", len(res.Records))
	}
	if res.Skipped.NotFound != 1 {
		t.Errorf("Skipped.NotFound = %d, expected 1", res.Skipped.NotFound)
	}
}

// TestPermissionErrorSkipsSiblingOnly verifies one unreadable subdirectory
// does not suppress results from its siblings.
func TestPermissionErrorSkipsSiblingOnly(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits do not restrict root")
	}

	tmp := t.TempDir()
	locked := filepath.Join(tmp, "locked")
	writeFile(t, filepath.Join(locked, "secret.log"), "x")
	writeFile(t, filepath.Join(tmp, "open", "a.log"), "x")

	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	s := NewScanner(openChecker(), testTable(), nil)
	res, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := recordPaths(res)
	want := filepath.Join(tmp, "open", "a.log")
	if len(got) != 1 || got[0] != want {
		t.Errorf("records = %v, expected only %v", got, want)
	}
	if res.Skipped.AccessDenied == 0 {
		t.Error("expected an access_denied skip to be counted")
	}
}

// TestRescanAfterDeletion verifies categorization is stable: after removing
// N of M found files, a rescan reports exactly the M-N survivors.
func TestRescanAfterDeletion(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"a.log", "b.log", "c.tmp", "d.tmp"} {
		writeFile(t, filepath.Join(tmp, name), "x")
	}

	s := NewScanner(openChecker(), testTable(), nil)
	first, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}
	if len(first.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(first.Records))
	}

	// Delete the first two found.
	for _, rec := range first.Records[:2] {
		if err := os.Remove(rec.Path); err != nil {
			t.Fatalf("remove %s: %v", rec.Path, err)
		}
	}

	second, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if len(second.Records) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(second.Records))
	}

	deleted := map[string]bool{
		first.Records[0].Path: true,
		first.Records[1].Path: true,
	}
	for _, rec := range second.Records {
		if deleted[rec.Path] {
			t.Errorf("deleted file %s reappeared in rescan", rec.Path)
		}
	}
}

func TestScanRejectedWhileBusy(t *testing.T) {
	s := NewScanner(openChecker(), testTable(), nil)
	s.busy.Store(true)

	if _, err := s.Scan([]string{t.TempDir()}); err != ErrScanActive {
		t.Errorf("Scan during active walk: err = %v, expected ErrScanActive", err)
	}

	s.busy.Store(false)
	if _, err := s.Scan([]string{t.TempDir()}); err != nil {
		t.Errorf("Scan after walk finished: unexpected err %v", err)
	}
}

// TestEmptyRootsScanMountedVolumes verifies Scan(nil) falls back to volume
// enumeration instead of failing.
func TestEmptyRootsScanMountedVolumes(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.log"), "x")

	s := NewScanner(openChecker(), testTable(), nil)
	s.listRoots = func() ([]string, error) { return []string{tmp}, nil }

	res, err := s.Scan(nil)
	if err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	got := recordPaths(res)
	want := filepath.Join(tmp, "a.log")
	if len(got) != 1 || got[0] != want {
		t.Errorf("records = %v, expected %v from enumerated volume", got, want)
	}
}

func TestVolumeEnumerationFailureSurfaces(t *testing.T) {
	s := NewScanner(openChecker(), testTable(), nil)
	s.listRoots = func() ([]string, error) { return nil, errors.New("mounts unavailable") }

	if _, err := s.Scan(nil); err == nil {
		t.Error("Scan(nil) with failing enumeration should return an error")
	}

	s.listRoots = func() ([]string, error) { return nil, nil }
	if _, err := s.Scan(nil); err == nil {
		t.Error("Scan(nil) with zero mounted volumes should return an error")
	}
}

// TestScanAsyncEventOrder verifies serial progress events followed by exactly
// one terminal event, then channel close.
func TestScanAsyncEventOrder(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "sub", "a.log"), "x")

	s := NewScanner(openChecker(), testTable(), nil)

	var progress int
	var terminals int
	var result *Result
	for ev := range s.ScanAsync([]string{tmp}) {
		if ev.Terminal() {
			terminals++
			if progress == 0 {
				t.Error("terminal event arrived before any progress")
			}
			result = ev.Result
			if ev.Err != nil {
				t.Errorf("unexpected scan error: %v", ev.Err)
			}
		} else {
			if terminals > 0 {
				t.Error("progress event after terminal event")
			}
			progress++
		}
	}

	if terminals != 1 {
		t.Errorf("expected exactly one terminal event, got %d", terminals)
	}
	if result == nil || len(result.Records) != 1 {
		t.Errorf("terminal event missing expected result: %+v", result)
	}
}

func TestScanAsyncReportsFailure(t *testing.T) {
	s := NewScanner(openChecker(), testTable(), nil)
	s.listRoots = func() ([]string, error) { return nil, errors.New("mounts unavailable") }

	var last Event
	for ev := range s.ScanAsync(nil) {
		last = ev
	}
	if last.Err == nil {
		t.Error("expected terminal failure event when no roots can be resolved")
	}
}

// TestFreshResultPerScan verifies accumulators are not carried across calls.
func TestFreshResultPerScan(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.log"), "xx")

	s := NewScanner(openChecker(), testTable(), nil)
	for i := 0; i < 2; i++ {
		res, err := s.Scan([]string{tmp})
		if err != nil {
			t.Fatalf("Scan %d failed: %v", i, err)
		}
		if len(res.Records) != 1 || res.TotalBytes != 2 {
			t.Errorf("scan %d: records=%d total=%d, expected 1/2 (stale accumulator?)",
				i, len(res.Records), res.TotalBytes)
		}
	}
}

func TestRecordTimestampsAreSnapshots(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a.log")
	writeFile(t, path, "x")
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	s := NewScanner(openChecker(), testTable(), nil)
	res, err := s.Scan([]string{tmp})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if diff := res.Records[0].LastModified.Sub(old); diff > time.Second || diff < -time.Second {
		t.Errorf("LastModified = %v, expected ~%v", res.Records[0].LastModified, old)
	}
}
