// Package gesture turns per-frame hand landmarks into interaction modes and
// continuous control parameters.
package gesture

// Mode is the discrete interaction mode resolved from a hand pose.
type Mode int

const (
	// ModeIdle means no hand is being tracked.
	ModeIdle Mode = iota
	// ModeZoom drives the particle burst from how open the hand is.
	ModeZoom
	// ModeRotate orbits the point cloud by following the index fingertip.
	ModeRotate
	// ModeRoll tilts the point cloud to match a victory sign.
	ModeRoll
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeZoom:
		return "ZOOM"
	case ModeRotate:
		return "ROTATE"
	case ModeRoll:
		return "ROLL"
	default:
		return "IDLE"
	}
}

// Label returns the status text shown to the user for the mode.
func (m Mode) Label() string {
	switch m {
	case ModeZoom:
		return "BURST MODE (OPEN/FIST)"
	case ModeRotate:
		return "ROTATION MODE (INDEX)"
	case ModeRoll:
		return "ROLL MODE (V-SIGN)"
	default:
		return "IDLE"
	}
}

// Vec2 is a 2D delta in normalized frame units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InteractionState is the classifier output for one detection cycle.
// Active == false always comes with ModeIdle and zeroed numeric fields.
type InteractionState struct {
	Active        bool    `json:"active"`
	Mode          Mode    `json:"mode"`
	ZoomFactor    float64 `json:"zoomFactor"`    // 0 (closed) to 1 (open)
	RotationDelta Vec2    `json:"rotationDelta"` // orbit delta for ROTATE
	RollAngle     float64 `json:"rollAngle"`     // radians, for ROLL
}

// Idle returns the state reported when no hand is detected.
func Idle() InteractionState {
	return InteractionState{Mode: ModeIdle}
}
