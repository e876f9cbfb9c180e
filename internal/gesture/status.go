package gesture

import "math"

// StatusThreshold is the zoom change that counts as a visible status update.
const StatusThreshold = 0.1

// Status is the low-frequency view of the interaction shown in the UI.
type Status struct {
	Active     bool
	Mode       Mode
	ZoomFactor float64
}

// Text returns the status line for display.
func (s Status) Text() string {
	if !s.Active {
		return "NO HANDS DETECTED"
	}
	return s.Mode.Label()
}

// StatusTracker filters per-frame states down to the changes a UI can show.
type StatusTracker struct {
	last Status
}

// NewStatusTracker creates a tracker starting from the idle status.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// Update folds s into the tracker. It returns the current status and whether
// it changed: Active or Mode differ, or ZoomFactor moved by more than
// StatusThreshold since the last reported status.
func (t *StatusTracker) Update(s InteractionState) (Status, bool) {
	if t.last.Active != s.Active || t.last.Mode != s.Mode ||
		math.Abs(t.last.ZoomFactor-s.ZoomFactor) > StatusThreshold {
		t.last = Status{Active: s.Active, Mode: s.Mode, ZoomFactor: s.ZoomFactor}
		return t.last, true
	}
	return t.last, false
}

// Current returns the last reported status.
func (t *StatusTracker) Current() Status {
	return t.last
}
