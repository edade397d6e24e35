package scan

import "time"

// Record is an immutable snapshot of one disposal candidate taken at scan
// time. A Record exists only if the path passed the safety gate and matched a
// category when it was visited; it says nothing about the file's state after
// the walk returns.
type Record struct {
	Path         string
	Size         int64
	Category     string
	LastModified time.Time
	Safe         bool   // always true for emitted records
	Reason       string // reserved for presentation; empty from the scanner
}

// Skipped counts walk entries that were passed over, by cause. Skips are
// normal outcomes, not errors: they never abort a walk.
type Skipped struct {
	NotFound     int64
	AccessDenied int64
	OtherIO      int64
}

// Total returns the number of skipped entries across all causes.
func (s Skipped) Total() int64 {
	return s.NotFound + s.AccessDenied + s.OtherIO
}

// Result is one walk's complete output. Each Scan call returns a fresh value;
// results are never shared between invocations.
type Result struct {
	Records    []Record
	TotalBytes int64
	Skipped    Skipped
}

// ByCategory groups the records by their assigned category.
func (r *Result) ByCategory() map[string][]Record {
	grouped := make(map[string][]Record)
	for _, rec := range r.Records {
		grouped[rec.Category] = append(grouped[rec.Category], rec)
	}
	return grouped
}

// CategoryBytes returns the byte total per category.
func (r *Result) CategoryBytes() map[string]int64 {
	totals := make(map[string]int64)
	for _, rec := range r.Records {
		totals[rec.Category] += rec.Size
	}
	return totals
}
