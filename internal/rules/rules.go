// Package rules defines the disposal-category table and the classifier that
// matches scanned files against it.
package rules

import (
	"strings"
	"time"
)

// Rule defines one disposal category. Matching inputs are expected lowercase;
// NameParts and PathParts are matched as substrings, Extensions exactly.
// MinAgeDays, when positive, gates name and path matches: a younger file
// skips this rule and falls through to the next one. Extension matches are
// never age-gated.
type Rule struct {
	Name       string   `yaml:"name"`
	NameParts  []string `yaml:"name_parts"`
	Extensions []string `yaml:"extensions"`
	PathParts  []string `yaml:"path_parts"`
	MinAgeDays int      `yaml:"min_age_days"`
}

// DefaultRules returns the built-in category table. Order is significant:
// the first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "cache",
			NameParts:  []string{"cache"},
			Extensions: []string{".cache", ".tmp"},
			PathParts:  []string{`appdata\local\temp`, `appdata\local\microsoft\windows\inetcache`, "/var/cache/", "/.cache/"},
		},
		{
			Name:       "temporary",
			NameParts:  []string{"temp", "tmp"},
			Extensions: []string{".tmp", ".temp", ".bak", ".old"},
			PathParts:  []string{"temp", "tmp"},
		},
		{
			Name:       "logs",
			NameParts:  []string{"log"},
			Extensions: []string{".log", ".txt"},
			PathParts:  []string{"logs"},
		},
		{
			Name:       "prefetch",
			NameParts:  []string{"prefetch"},
			Extensions: []string{".pf"},
			PathParts:  []string{`windows\prefetch`},
		},
		{
			Name:      "recycle_bin",
			NameParts: []string{"$recycle.bin"},
			PathParts: []string{"$recycle.bin"},
		},
		{
			Name:       "downloads_old",
			PathParts:  []string{"downloads"},
			MinAgeDays: 90,
		},
	}
}

// Classify matches one file against the rule table in declared order and
// returns the winning category. It is pure: no I/O, no clock reads — the
// caller supplies now.
//
// name and ext must be lowercase; normPath must be the lowercased, cleaned
// absolute path.
func Classify(table []Rule, name, ext, normPath string, modTime, now time.Time) (string, bool) {
	ageDays := now.Sub(modTime).Hours() / 24

	for _, r := range table {
		if matchAny(name, r.NameParts) {
			if r.MinAgeDays > 0 && ageDays < float64(r.MinAgeDays) {
				continue
			}
			return r.Name, true
		}
		if ext != "" && matchExt(ext, r.Extensions) {
			// Extension matches bypass the age gate deliberately; see the
			// downloads_old rule, which ages out by path only.
			return r.Name, true
		}
		if matchAny(normPath, r.PathParts) {
			if r.MinAgeDays > 0 && ageDays < float64(r.MinAgeDays) {
				continue
			}
			return r.Name, true
		}
	}
	return "", false
}

func matchAny(s string, parts []string) bool {
	for _, p := range parts {
		if p != "" && strings.Contains(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func matchExt(ext string, exts []string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
