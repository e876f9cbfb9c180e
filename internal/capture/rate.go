package capture

import "time"

// RateGovernor picks the camera polling rate: ActiveFPS while something moves
// in front of the lens, IdleFPS once nothing has moved for IdleAfter.
// It is owned by the detection loop and is not safe for concurrent use.
type RateGovernor struct {
	ActiveFPS int
	IdleFPS   int
	IdleAfter time.Duration

	active     bool
	lastMotion time.Time
}

// NewRateGovernor returns a governor that starts in the active state at now,
// so the first frames after start are polled at full rate.
func NewRateGovernor(activeFPS, idleFPS int, idleAfter time.Duration, now time.Time) *RateGovernor {
	return &RateGovernor{
		ActiveFPS:  activeFPS,
		IdleFPS:    idleFPS,
		IdleAfter:  idleAfter,
		active:     true,
		lastMotion: now,
	}
}

// Observe records whether the latest frame showed motion and returns the
// frame rate to poll at plus whether it changed.
func (g *RateGovernor) Observe(motion bool, now time.Time) (int, bool) {
	if motion {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return g.ActiveFPS, true
		}
		return g.ActiveFPS, false
	}

	if g.active && now.Sub(g.lastMotion) > g.IdleAfter {
		g.active = false
		return g.IdleFPS, true
	}
	return g.FPS(), false
}

// Active reports whether the governor is polling at the active rate.
func (g *RateGovernor) Active() bool {
	return g.active
}

// FPS returns the current polling rate.
func (g *RateGovernor) FPS() int {
	if g.active {
		return g.ActiveFPS
	}
	return g.IdleFPS
}

// Interval returns the ticker period for the current rate.
func (g *RateGovernor) Interval() time.Duration {
	return time.Second / time.Duration(max(g.FPS(), 1))
}
