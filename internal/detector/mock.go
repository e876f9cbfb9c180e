package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat, ts time.Time) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Digits selects which digits a synthesized pose holds extended.
type Digits struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// fingerBase is the knuckle x position of each long finger, index first.
var fingerBase = [4]float64{0.55, 0.50, 0.45, 0.40}

// Pose synthesizes a right hand, palm toward the camera, with the given digits
// extended. Extended fingers put the tip well beyond the PIP joint; curled
// fingers fold the tip back toward the wrist.
func Pose(d Digits) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.01}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72, Z: 0.02}
	if d.Thumb {
		lm.Points[ThumbIP] = Point3D{X: 0.67, Y: 0.66, Z: 0.03}
		lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}
	} else {
		lm.Points[ThumbIP] = Point3D{X: 0.59, Y: 0.67, Z: 0.0}
		lm.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.66, Z: -0.01}
	}

	extended := [4]bool{d.Index, d.Middle, d.Ring, d.Pinky}
	for f := 0; f < 4; f++ {
		mcp := IndexMCP + f*4
		x := fingerBase[f]
		spread := (x - 0.5) * 0.2

		lm.Points[mcp] = Point3D{X: x, Y: 0.68, Z: 0.0}
		if extended[f] {
			lm.Points[mcp+1] = Point3D{X: x + spread*0.5 + 0.01, Y: 0.55, Z: 0.0}
			lm.Points[mcp+2] = Point3D{X: x + spread*0.8 + 0.02, Y: 0.45, Z: 0.0}
			lm.Points[mcp+3] = Point3D{X: x + spread + 0.03, Y: 0.35, Z: 0.0}
		} else {
			lm.Points[mcp+1] = Point3D{X: x + 0.01, Y: 0.62, Z: -0.05}
			lm.Points[mcp+2] = Point3D{X: x, Y: 0.66, Z: -0.04}
			lm.Points[mcp+3] = Point3D{X: x - 0.01, Y: 0.70, Z: -0.02}
		}
	}

	return lm
}

// FistLandmarks returns a closed fist: no digit extended.
func FistLandmarks() HandLandmarks {
	return Pose(Digits{})
}

// PointingLandmarks returns a hand with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	return Pose(Digits{Index: true})
}

// VictoryLandmarks returns a victory sign: index and middle extended.
func VictoryLandmarks() HandLandmarks {
	return Pose(Digits{Index: true, Middle: true})
}

// ThumbsUpLandmarks returns a hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return Pose(Digits{Thumb: true})
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	// Ring finger extended upward
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	// Pinky finger extended upward
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}
