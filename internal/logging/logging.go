package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logFile = "junksweep.log"

func defaultLogDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "junksweep")
	}
	return filepath.Join(os.TempDir(), "junksweep")
}

// New creates a logger writing to stdout and a rotating log file in the
// default location.
func New() *log.Logger {
	return NewWithDir("", 30)
}

// NewWithDir creates a logger writing to stdout and a rotating log file under
// dir. Empty dir selects the per-user default.
func NewWithDir(dir string, rotateDays int) *log.Logger {
	if dir == "" {
		dir = defaultLogDir()
	}
	if rotateDays <= 0 {
		rotateDays = 30
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("failed to ensure log directory %s: %v", dir, err)
		return log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	}

	filePath := filepath.Join(dir, logFile)
	rotateIfNeeded(filePath, rotateDays)

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("failed to open log file %s: %v", filePath, err)
		return log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	}

	mw := io.MultiWriter(os.Stdout, f)
	return log.New(mw, "", log.LstdFlags|log.Lmicroseconds)
}

// rotateIfNeeded renames the current log aside once it ages past rotateDays
// and prunes rotated logs older than that.
func rotateIfNeeded(logPath string, rotateDays int) {
	info, err := os.Stat(logPath)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -rotateDays)
	if !info.ModTime().Before(cutoff) {
		return
	}

	stamp := info.ModTime().Format("20060102-150405")
	if err := os.Rename(logPath, logPath+"."+stamp); err != nil {
		log.Printf("failed to rotate log file: %v", err)
		return
	}
	pruneRotated(logPath, cutoff)
}

func pruneRotated(logPath string, cutoff time.Time) {
	dir := filepath.Dir(logPath)
	base := filepath.Base(logPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base+".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			full := filepath.Join(dir, entry.Name())
			if err := os.Remove(full); err != nil {
				log.Printf("failed to remove old log file %s: %v", full, err)
			}
		}
	}
}
