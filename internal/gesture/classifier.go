package gesture

import (
	"math"

	"github.com/ayusman/zenparticles/internal/detector"
)

// Classifier tuning.
const (
	// ThumbExtendedThreshold is the minimum thumb tip to index knuckle distance
	// for the thumb to count as extended.
	ThumbExtendedThreshold = 0.1
	// RotationSensitivity scales fingertip motion into orbit deltas.
	RotationSensitivity = 5.0
)

// Classifier maps one frame of hand landmarks to an InteractionState.
// It retains the previous index fingertip between frames to compute
// ROTATE deltas. A Classifier is not safe for concurrent use.
type Classifier struct {
	prevTip *Vec2
}

// NewClassifier creates a Classifier with no retained fingertip.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Reset clears the retained fingertip.
func (c *Classifier) Reset() {
	c.prevTip = nil
}

// PreviousFingertip returns the retained index fingertip, if any.
func (c *Classifier) PreviousFingertip() (Vec2, bool) {
	if c.prevTip == nil {
		return Vec2{}, false
	}
	return *c.prevTip, true
}

// Classify resolves the interaction for hand, which is nil when no hand was
// detected. Modes are tried in priority order: ROLL, ROTATE, then ZOOM.
func (c *Classifier) Classify(hand *detector.HandLandmarks) InteractionState {
	if hand == nil {
		c.prevTip = nil
		return Idle()
	}

	p := &hand.Points
	state := InteractionState{Active: true}

	indexExt := fingerExtended(p, detector.IndexTip, detector.IndexPIP)
	middleExt := fingerExtended(p, detector.MiddleTip, detector.MiddlePIP)
	ringExt := fingerExtended(p, detector.RingTip, detector.RingPIP)
	pinkyExt := fingerExtended(p, detector.PinkyTip, detector.PinkyPIP)
	thumbExt := detector.PlanarDistance(p[detector.ThumbTip], p[detector.IndexMCP]) > ThumbExtendedThreshold

	switch {
	case indexExt && middleExt && !ringExt && !pinkyExt:
		state.Mode = ModeRoll
		index, middle := p[detector.IndexTip], p[detector.MiddleTip]
		state.RollAngle = math.Atan2(middle.Y-index.Y, middle.X-index.X)
		c.prevTip = nil

	case indexExt && !middleExt && !ringExt && !pinkyExt:
		state.Mode = ModeRotate
		tip := Vec2{X: p[detector.IndexTip].X, Y: p[detector.IndexTip].Y}
		if c.prevTip != nil {
			state.RotationDelta = Vec2{
				X: (tip.X - c.prevTip.X) * RotationSensitivity,
				Y: (tip.Y - c.prevTip.Y) * RotationSensitivity,
			}
		}
		c.prevTip = &tip

	default:
		state.Mode = ModeZoom
		c.prevTip = nil
		state.ZoomFactor = zoomFactor(countTrue(thumbExt, indexExt, middleExt, ringExt, pinkyExt))
	}

	return state
}

// fingerExtended reports whether the fingertip lies farther from the wrist
// than the finger's PIP joint.
func fingerExtended(p *[detector.NumLandmarks]detector.Point3D, tip, pip int) bool {
	wrist := p[detector.Wrist]
	return detector.PlanarDistance(wrist, p[tip]) > detector.PlanarDistance(wrist, p[pip])
}

// zoomFactor maps the number of extended digits to an openness in [0,1].
func zoomFactor(extended int) float64 {
	switch {
	case extended >= 4:
		return 1
	case extended <= 1:
		return 0
	default:
		return float64(extended) / 5
	}
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
