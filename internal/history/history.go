// Package history persists deletion outcomes to a local SQLite database so
// operators can audit what was removed, skipped, or failed and why.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded per path outcome.
const (
	ActionDelete = "DELETE"
	ActionDryRun = "DRY_RUN"
	ActionSkip   = "SKIP"
	ActionError  = "ERROR"
)

// DB wraps the SQLite connection holding deletion history.
type DB struct {
	db *sql.DB
}

// Entry is one recorded outcome.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Action    string
	Path      string
	FileName  string
	Size      int64
	Category  string
	Reason    string
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// Touch the database so a bad path fails here, not on first insert.
	if _, err := db.Exec("SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history database %s: %w", dbPath, err)
	}
	// WAL keeps readers (the history CLI) from blocking the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set synchronous mode: %w", err)
	}

	h := &DB{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		size INTEGER NOT NULL,
		category TEXT,
		reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_timestamp ON outcomes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_outcomes_action ON outcomes(action);
	CREATE INDEX IF NOT EXISTS idx_outcomes_path ON outcomes(path);
	CREATE INDEX IF NOT EXISTS idx_outcomes_category ON outcomes(category);
	`
	_, err := d.db.Exec(schema)
	return err
}

// Record inserts one outcome row.
func (d *DB) Record(action, path string, size int64, category, reason string) error {
	_, err := d.db.Exec(
		`INSERT INTO outcomes (timestamp, action, path, file_name, size, category, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now(), action, path, filepath.Base(path), size, category, reason,
	)
	return err
}

// Recent returns up to limit outcomes, newest first.
func (d *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(
		`SELECT id, timestamp, action, path, file_name, size, category, reason
		 FROM outcomes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var fileName, category, reason sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Path, &fileName, &e.Size, &category, &reason); err != nil {
			return nil, err
		}
		e.FileName = fileName.String
		e.Category = category.String
		e.Reason = reason.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// ActionCounts returns the number of recorded outcomes per action.
func (d *DB) ActionCounts() (map[string]int64, error) {
	rows, err := d.db.Query(`SELECT action, COUNT(*) FROM outcomes GROUP BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	return counts, rows.Err()
}

// BytesFreed returns the byte total of successful deletions.
func (d *DB) BytesFreed() (int64, error) {
	var total sql.NullInt64
	err := d.db.QueryRow(
		`SELECT SUM(size) FROM outcomes WHERE action = ?`, ActionDelete).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
