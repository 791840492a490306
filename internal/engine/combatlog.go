package engine

import (
	"fmt"
	"io"
	"time"
)

// CombatLog writes a human readable trace of an iteration.
type CombatLog struct {
	w       io.Writer
	enabled bool
}

// NewCombatLog returns a log writing to w. A nil writer disables logging.
func NewCombatLog(w io.Writer) *CombatLog {
	return &CombatLog{w: w, enabled: w != nil}
}

// Enabled reports whether lines are written.
func (l *CombatLog) Enabled() bool {
	return l != nil && l.enabled
}

// At writes one line stamped with the given simulated time.
func (l *CombatLog) At(ts time.Duration, actor, event, format string, args ...any) {
	if !l.Enabled() {
		return
	}
	prefix := fmt.Sprintf("[%7.3fs] %s %s ", ts.Round(time.Millisecond).Seconds(), actor, event)
	fmt.Fprintf(l.w, prefix+format+"\n", args...)
}

// Static writes an unstamped line.
func (l *CombatLog) Static(format string, args ...any) {
	if !l.Enabled() {
		return
	}
	fmt.Fprintf(l.w, format+"\n", args...)
}
