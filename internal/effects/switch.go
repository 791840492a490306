package effects

import (
	"errors"
	"time"
)

// ErrSwitchLoop is reported when a phase is toggled twice at the same timestamp.
var ErrSwitchLoop = errors.New("phase toggled twice at the same timestamp")

const never = time.Duration(-1)

// StateSwitch is an edge-triggered phase flag used by action-list conditions.
type StateSwitch struct {
	Name string

	on           bool
	lastEnable   time.Duration
	lastDisable  time.Duration
	enabledTotal time.Duration
	enabledCount int
}

// NewStateSwitch returns a switch that is off.
func NewStateSwitch(name string) *StateSwitch {
	s := &StateSwitch{Name: name}
	s.Reset()
	return s
}

// Enable turns the switch on. It returns false when the switch was already
// enabled at now, which means the caller is looping without time advancing.
func (s *StateSwitch) Enable(now time.Duration) bool {
	if s.lastEnable == now {
		return false
	}
	s.on = true
	s.lastEnable = now
	s.enabledCount++
	return true
}

// Disable turns the switch off. It returns false when the switch was already
// disabled at now.
func (s *StateSwitch) Disable(now time.Duration) bool {
	if s.lastDisable == now {
		return false
	}
	if s.on && s.lastEnable != never {
		s.enabledTotal += now - s.lastEnable
	}
	s.on = false
	s.lastDisable = now
	return true
}

// On reports the current state.
func (s *StateSwitch) On() bool {
	return s.on
}

// Duration returns the time since the last enable, zero when off.
func (s *StateSwitch) Duration(now time.Duration) time.Duration {
	if !s.on {
		return 0
	}
	return now - s.lastEnable
}

// Total returns the accumulated on-time up to now.
func (s *StateSwitch) Total(now time.Duration) time.Duration {
	return s.enabledTotal + s.Duration(now)
}

// Count returns how many times the switch was enabled.
func (s *StateSwitch) Count() int {
	return s.enabledCount
}

// Reset turns the switch off and forgets both timestamps.
func (s *StateSwitch) Reset() {
	s.on = false
	s.lastEnable = never
	s.lastDisable = never
	s.enabledTotal = 0
	s.enabledCount = 0
}
