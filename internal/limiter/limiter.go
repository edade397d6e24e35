// Package limiter paces CPU-heavy loops so a long walk does not monopolize
// a core.
package limiter

import (
	"runtime"
	"time"
)

const workSlice = 10 * time.Millisecond

// Pacer throttles a loop to roughly maxPercent CPU by sleeping between work
// slices. Coarse by construction; use OS-level controls (cgroups) when exact
// limits matter.
type Pacer struct {
	maxPercent float64
	lastSleep  time.Time
}

// NewPacer creates a pacer. Percentages outside (0,100) disable pacing.
func NewPacer(maxPercent float64) *Pacer {
	return &Pacer{maxPercent: maxPercent, lastSleep: time.Now()}
}

// Pace sleeps if the current work slice is used up, then yields.
func (p *Pacer) Pace() {
	if p.maxPercent <= 0 || p.maxPercent >= 100 {
		return
	}
	if time.Since(p.lastSleep) > workSlice {
		idle := (100.0 - p.maxPercent) / p.maxPercent
		time.Sleep(time.Duration(float64(workSlice) * idle))
		p.lastSleep = time.Now()
	}
	runtime.Gosched()
}
