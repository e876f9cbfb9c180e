// Package particle simulates the live point cloud that chases the target shape.
package particle

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/zenparticles/internal/gesture"
)

// Simulation tuning, per render frame.
const (
	// ExplosionSmoothing is the lerp factor pulling explosion toward the hand.
	ExplosionSmoothing = 0.1
	// PositionSmoothing is the lerp factor pulling each point toward its goal.
	PositionSmoothing = 0.1
	// ExpansionDistance is how far points fly out at full explosion.
	ExpansionDistance = 5.0
	// JitterScale is the jitter span at full explosion.
	JitterScale = 0.5
	// BreathAmplitude is the amplitude of the idle floating motion.
	BreathAmplitude = 0.05

	breathFreqX = 0.5
	breathFreqY = 0.3
	// directionEpsilon keeps the expansion direction finite at the origin.
	directionEpsilon = 0.001
)

// Simulator owns the particle buffer and the smoothed explosion factor.
// It is driven from a single goroutine, once per render frame.
type Simulator struct {
	target    []float64
	positions []float64
	explosion float64
	rng       *rand.Rand
}

// NewSimulator creates a Simulator whose buffer starts at target. rng drives
// the per-frame jitter.
func NewSimulator(target []float64, rng *rand.Rand) *Simulator {
	s := &Simulator{rng: rng}
	s.SetTarget(target)
	return s
}

// SetTarget switches to a new target shape. The buffer snaps to an exact copy
// of target; explosion is left as is.
func (s *Simulator) SetTarget(target []float64) {
	s.target = target
	if len(s.positions) != len(target) {
		s.positions = make([]float64, len(target))
	}
	copy(s.positions, target)
}

// Step advances the simulation by one frame. elapsed is the time in seconds
// since the simulation started and drives the breathing motion.
func (s *Simulator) Step(state gesture.InteractionState, elapsed float64) {
	desired := 0.0
	if state.Active && state.Mode == gesture.ModeZoom {
		desired = state.ZoomFactor
	}
	s.explosion += (desired - s.explosion) * ExplosionSmoothing

	expansion := s.explosion * ExpansionDistance
	noise := s.explosion * JitterScale

	for i := 0; i+2 < len(s.target); i += 3 {
		tx, ty, tz := s.target[i], s.target[i+1], s.target[i+2]

		floatX := math.Sin(elapsed*breathFreqX+ty) * BreathAmplitude
		floatY := math.Cos(elapsed*breathFreqY+tx) * BreathAmplitude

		dist := math.Sqrt(tx*tx+ty*ty+tz*tz) + directionEpsilon
		ex := tx + tx/dist*expansion
		ey := ty + ty/dist*expansion
		ez := tz + tz/dist*expansion

		rx := (s.rng.Float64() - 0.5) * noise
		ry := (s.rng.Float64() - 0.5) * noise
		rz := (s.rng.Float64() - 0.5) * noise

		s.positions[i] += (ex + floatX + rx - s.positions[i]) * PositionSmoothing
		s.positions[i+1] += (ey + floatY + ry - s.positions[i+1]) * PositionSmoothing
		s.positions[i+2] += (ez + rz - s.positions[i+2]) * PositionSmoothing
	}
}

// Positions returns the live buffer. Callers must not retain it across Step
// calls; use Snapshot for a stable copy.
func (s *Simulator) Positions() []float64 {
	return s.positions
}

// Snapshot returns a copy of the live buffer.
func (s *Simulator) Snapshot() []float64 {
	out := make([]float64, len(s.positions))
	copy(out, s.positions)
	return out
}

// Target returns the current target shape.
func (s *Simulator) Target() []float64 {
	return s.target
}

// Explosion returns the smoothed explosion factor in [0,1].
func (s *Simulator) Explosion() float64 {
	return s.explosion
}

// Count returns the number of points.
func (s *Simulator) Count() int {
	return len(s.positions) / 3
}
