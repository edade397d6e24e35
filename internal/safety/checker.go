package safety

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

var ErrInvalidPath = errors.New("invalid path")

// Rule identifies which protection decided a verdict.
type Rule int

const (
	RuleNone Rule = iota
	RuleResolveError
	RuleProtectedDir
	RuleProtectedExt
	RuleProtectedName
	RuleHidden
)

func (r Rule) String() string {
	switch r {
	case RuleNone:
		return "none"
	case RuleResolveError:
		return "resolve_error"
	case RuleProtectedDir:
		return "protected_directory"
	case RuleProtectedExt:
		return "protected_extension"
	case RuleProtectedName:
		return "protected_filename"
	case RuleHidden:
		return "hidden_file"
	}
	return "unknown"
}

// Verdict is the outcome of one safety check. Rule distinguishes hard
// directory protection from the other rejections so the walker can decide
// whether to prune a whole subtree.
type Verdict struct {
	Safe   bool
	Rule   Rule
	Detail string
}

// Checker is the gate consulted before every classification and every delete.
// Each instance owns its own protected-directory set; runtime additions never
// leak into other instances.
type Checker struct {
	protectedDirs  []string
	protectedExts  map[string]bool
	protectedNames map[string]bool
	tempMarkers    []string
	foldCase       bool
	sep            string
}

// NewChecker builds a checker seeded from the default tables for the current
// platform plus any extra protected directories.
func NewChecker(extraProtected []string) *Checker {
	return newCheckerForOS(runtime.GOOS, extraProtected)
}

// NewCheckerFromTables builds a checker from explicit tables instead of the
// platform defaults. For embedders (and tests) that carry their own policy.
func NewCheckerFromTables(dirs, exts, names, tempMarkers []string) *Checker {
	return newChecker(runtime.GOOS, tables{
		directories: dirs,
		extensions:  exts,
		filenames:   names,
		tempMarkers: tempMarkers,
	}, nil)
}

func newCheckerForOS(goos string, extraProtected []string) *Checker {
	return newChecker(goos, defaultTables(goos), extraProtected)
}

func newChecker(goos string, t tables, extraProtected []string) *Checker {
	c := &Checker{
		protectedExts:  make(map[string]bool, len(t.extensions)),
		protectedNames: make(map[string]bool, len(t.filenames)),
		foldCase:       goos == "windows",
		sep:            "/",
	}
	if goos == "windows" {
		c.sep = `\`
	}
	for _, d := range t.directories {
		c.protectedDirs = append(c.protectedDirs, filepath.Clean(d))
	}
	for _, e := range t.extensions {
		c.protectedExts[strings.ToLower(e)] = true
	}
	for _, n := range t.filenames {
		c.protectedNames[strings.ToLower(n)] = true
	}
	for _, m := range t.tempMarkers {
		c.tempMarkers = append(c.tempMarkers, strings.ToLower(filepath.FromSlash(m)))
	}
	for _, d := range extraProtected {
		c.AddProtectedDirectory(d)
	}
	return c
}

// Check runs the full evaluation chain. First hit decides; resolution failure
// fails closed.
func (c *Checker) Check(path string) Verdict {
	p, err := NormalizePath(path)
	if err != nil {
		return Verdict{Safe: false, Rule: RuleResolveError, Detail: fmt.Sprintf("cannot resolve path: %v", err)}
	}

	temp := c.isTempLocation(p)

	if dir, ok := c.underProtectedDir(p); ok && !temp {
		return Verdict{Safe: false, Rule: RuleProtectedDir, Detail: "inside protected directory " + dir}
	}

	ext := strings.ToLower(filepath.Ext(p))
	if ext != "" && c.protectedExts[ext] && !temp {
		return Verdict{Safe: false, Rule: RuleProtectedExt, Detail: "protected extension " + ext}
	}

	// No temp exception for filename protection.
	name := filepath.Base(p)
	if c.protectedNames[strings.ToLower(name)] {
		return Verdict{Safe: false, Rule: RuleProtectedName, Detail: "protected filename " + name}
	}

	// Heuristic only; real hidden/system attributes are not inspected.
	if strings.HasPrefix(name, ".") {
		return Verdict{Safe: false, Rule: RuleHidden, Detail: "hidden file " + name}
	}

	return Verdict{Safe: true, Rule: RuleNone, Detail: "safe to delete"}
}

// IsSafeToDelete answers the gate question as (safe, reason).
func (c *Checker) IsSafeToDelete(path string) (bool, string) {
	v := c.Check(path)
	return v.Safe, v.Detail
}

// AddProtectedDirectory appends a directory to this instance's protected set.
// Process-lifetime only; never persisted, never shared.
func (c *Checker) AddProtectedDirectory(dir string) {
	if strings.TrimSpace(dir) == "" {
		return
	}
	c.protectedDirs = append(c.protectedDirs, filepath.Clean(dir))
}

// ProtectedDirectories returns a copy of the current protected-prefix set.
func (c *Checker) ProtectedDirectories() []string {
	out := make([]string, len(c.protectedDirs))
	copy(out, c.protectedDirs)
	return out
}

// NormalizePath converts path to absolute, cleaned form.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Clean(abs), nil
}

func (c *Checker) underProtectedDir(path string) (string, bool) {
	p := path
	if c.foldCase {
		p = strings.ToLower(p)
	}
	for _, dir := range c.protectedDirs {
		d := dir
		if c.foldCase {
			d = strings.ToLower(d)
		}
		if hasPathPrefix(p, d, c.sep) {
			return dir, true
		}
	}
	return "", false
}

func (c *Checker) isTempLocation(path string) bool {
	p := strings.ToLower(path)
	for _, marker := range c.tempMarkers {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether path equals prefix or lies beneath it.
// Separator-aware so /tmpdir does not match prefix /tmp.
func hasPathPrefix(path, prefix, sep string) bool {
	if path == prefix {
		return true
	}
	if prefix == sep {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+sep)
}
