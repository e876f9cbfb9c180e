package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/zenparticles/internal/gesture"
)

const epsilon = 1e-9

func TestController_StartsAtIdentity(t *testing.T) {
	c := NewController()

	if !c.Rotation().ApproxEqualThreshold(mgl64.QuatIdent(), epsilon) {
		t.Errorf("Rotation() = %v, want identity", c.Rotation())
	}
	if c.Roll() != 0 {
		t.Errorf("Roll() = %v, want 0", c.Roll())
	}
}

func TestController_IdleAutoRotates(t *testing.T) {
	for _, s := range []gesture.InteractionState{
		gesture.Idle(),
		{Active: true, Mode: gesture.ModeZoom, ZoomFactor: 1},
	} {
		t.Run(s.Mode.String(), func(t *testing.T) {
			c := NewController()
			c.Update(s)

			want := mgl64.QuatRotate(AutoRotateStep, axisY)
			if !c.Target().ApproxEqualThreshold(want, epsilon) {
				t.Fatalf("Target() = %v, want %v", c.Target(), want)
			}

			// The rendered rotation lags behind: a tenth of the way.
			got := 2 * math.Asin(c.Rotation().V.Len())
			if math.Abs(got-AutoRotateStep*Smoothing) > 1e-7 {
				t.Errorf("rendered angle = %v, want about %v", got, AutoRotateStep*Smoothing)
			}
		})
	}
}

func TestController_RotateComposesYawThenPitch(t *testing.T) {
	c := NewController()
	s := gesture.InteractionState{
		Active:        true,
		Mode:          gesture.ModeRotate,
		RotationDelta: gesture.Vec2{X: 0.3, Y: -0.2},
	}

	c.Update(s)
	c.Update(s)

	yaw := mgl64.QuatRotate(0.3, axisY)
	pitch := mgl64.QuatRotate(-0.2, axisX)
	want := mgl64.QuatIdent()
	for i := 0; i < 2; i++ {
		want = pitch.Mul(yaw.Mul(want))
	}

	if !c.Target().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("Target() = %v, want %v", c.Target(), want)
	}

	// Composition order matters for simultaneous deltas.
	swapped := yaw.Mul(pitch.Mul(yaw.Mul(pitch)))
	if c.Target().ApproxEqualThreshold(swapped, 1e-6) {
		t.Error("expected yaw-then-pitch to differ from pitch-then-yaw")
	}
}

func TestController_RotateZeroDeltaHoldsTarget(t *testing.T) {
	c := NewController()
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRotate})

	if !c.Target().ApproxEqualThreshold(mgl64.QuatIdent(), epsilon) {
		t.Errorf("Target() = %v, want identity", c.Target())
	}
}

func TestController_RollSmoothsTowardHand(t *testing.T) {
	c := NewController()
	s := gesture.InteractionState{Active: true, Mode: gesture.ModeRoll, RollAngle: math.Pi / 4}
	desired := -(math.Pi/4 + math.Pi/2)

	c.Update(s)
	if math.Abs(c.Roll()-desired*RollSmoothing) > epsilon {
		t.Fatalf("Roll() after 1 frame = %v, want %v", c.Roll(), desired*RollSmoothing)
	}

	c.Update(s)
	want := desired * (1 - math.Pow(1-RollSmoothing, 2))
	if math.Abs(c.Roll()-want) > epsilon {
		t.Fatalf("Roll() after 2 frames = %v, want %v", c.Roll(), want)
	}

	for i := 0; i < 200; i++ {
		c.Update(s)
	}
	if math.Abs(c.Roll()-desired) > 1e-6 {
		t.Errorf("Roll() = %v, want converged to %v", c.Roll(), desired)
	}
}

func TestController_RollHoldsGroupRotation(t *testing.T) {
	c := NewController()
	for i := 0; i < 10; i++ {
		c.Update(gesture.Idle())
	}
	before := c.Rotation()
	target := c.Target()

	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRoll, RollAngle: 0.3})

	if !c.Rotation().ApproxEqualThreshold(before, epsilon) {
		t.Errorf("Rotation() changed during roll: %v -> %v", before, c.Rotation())
	}
	if !c.Target().ApproxEqualThreshold(target, epsilon) {
		t.Errorf("Target() changed during roll: %v -> %v", target, c.Target())
	}
}

func TestController_RollPersistsAfterRoll(t *testing.T) {
	c := NewController()
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRoll, RollAngle: 0})
	roll := c.Roll()

	c.Update(gesture.Idle())
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRotate, RotationDelta: gesture.Vec2{X: 0.1}})

	if c.Roll() != roll {
		t.Errorf("Roll() = %v, want unchanged %v", c.Roll(), roll)
	}
}

func TestController_RenderedRotationConverges(t *testing.T) {
	c := NewController()
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRotate, RotationDelta: gesture.Vec2{X: 1.2, Y: 0.4}})

	target := c.Target()
	prev := math.Inf(1)
	for i := 0; i < 5; i++ {
		c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRotate})
		d := 1 - math.Abs(c.Rotation().Dot(target))
		if d >= prev {
			t.Fatalf("frame %d: distance to target did not shrink (%v >= %v)", i, d, prev)
		}
		prev = d
	}
	for i := 0; i < 300; i++ {
		c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRotate})
	}
	if !c.Rotation().OrientationEqualThreshold(target, 1e-6) {
		t.Errorf("Rotation() = %v, want converged to %v", c.Rotation(), target)
	}
}

func TestController_Orientation(t *testing.T) {
	c := NewController()
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRoll, RollAngle: -math.Pi / 2})
	// Desired roll is zero, so the composed orientation is the group rotation.
	if !c.Orientation().ApproxEqualThreshold(c.Rotation(), epsilon) {
		t.Errorf("Orientation() = %v, want %v", c.Orientation(), c.Rotation())
	}

	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRoll, RollAngle: 0})
	v := c.Orientation().Rotate(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{math.Cos(c.Roll()), math.Sin(c.Roll()), 0}
	if !v.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("rotated X axis = %v, want %v", v, want)
	}
}

func TestController_Reset(t *testing.T) {
	c := NewController()
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRotate, RotationDelta: gesture.Vec2{X: 1}})
	c.Update(gesture.InteractionState{Active: true, Mode: gesture.ModeRoll, RollAngle: 1})

	c.Reset()

	if !c.Target().ApproxEqualThreshold(mgl64.QuatIdent(), epsilon) || c.Roll() != 0 {
		t.Errorf("Reset() left target %v roll %v", c.Target(), c.Roll())
	}
}
