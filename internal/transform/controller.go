// Package transform integrates interaction states into the point cloud's
// group orientation.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/zenparticles/internal/gesture"
)

// Controller tuning, per render frame.
const (
	// Smoothing is the slerp factor pulling the rendered rotation toward the target.
	Smoothing = 0.1
	// RollSmoothing is the lerp factor pulling the roll angle toward the hand.
	RollSmoothing = 0.1
	// AutoRotateStep is the idle yaw increment in radians.
	AutoRotateStep = 0.002
)

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}
)

// Controller owns the orientation state: the target accumulator, the smoothed
// rendered rotation, and a separate roll angle about the view axis.
type Controller struct {
	current mgl64.Quat
	target  mgl64.Quat
	roll    float64
}

// NewController creates a Controller at the identity orientation.
func NewController() *Controller {
	return &Controller{
		current: mgl64.QuatIdent(),
		target:  mgl64.QuatIdent(),
	}
}

// Update advances the orientation by one render frame.
func (c *Controller) Update(s gesture.InteractionState) {
	rolling := s.Active && s.Mode == gesture.ModeRoll

	switch {
	case s.Active && s.Mode == gesture.ModeRotate:
		// Yaw then pitch, both applied in world space.
		yaw := mgl64.QuatRotate(s.RotationDelta.X, axisY)
		pitch := mgl64.QuatRotate(s.RotationDelta.Y, axisX)
		c.target = yaw.Mul(c.target)
		c.target = pitch.Mul(c.target)
	case rolling:
		desired := -(s.RollAngle + math.Pi/2)
		c.roll += (desired - c.roll) * RollSmoothing
	default:
		c.target = c.target.Mul(mgl64.QuatRotate(AutoRotateStep, axisY))
	}

	c.target = c.target.Normalize()

	// Roll drives the view axis directly; the group rotation holds still meanwhile.
	if !rolling {
		c.current = slerp(c.current, c.target, Smoothing)
	}
}

// Rotation returns the smoothed group rotation, excluding roll.
func (c *Controller) Rotation() mgl64.Quat {
	return c.current
}

// Target returns the unsmoothed rotation accumulator.
func (c *Controller) Target() mgl64.Quat {
	return c.target
}

// Roll returns the roll angle about the view axis in radians.
func (c *Controller) Roll() float64 {
	return c.roll
}

// Orientation returns the full rendered orientation: the group rotation
// followed by the roll about Z.
func (c *Controller) Orientation() mgl64.Quat {
	return c.current.Mul(mgl64.QuatRotate(c.roll, axisZ)).Normalize()
}

// Reset returns the controller to the identity orientation.
func (c *Controller) Reset() {
	c.current = mgl64.QuatIdent()
	c.target = mgl64.QuatIdent()
	c.roll = 0
}

// slerp interpolates along the shortest arc from a to b.
func slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}
