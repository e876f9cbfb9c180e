package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ReplayDetector plays back a recorded landmark stream, one entry per Detect
// call, ignoring the frame content. A nil entry replays a frame with no hand.
type ReplayDetector struct {
	frames []*HandLandmarks
	index  int
	loop   bool
	mu     sync.Mutex
}

// NewReplayDetector creates a ReplayDetector over frames. When loop is false
// the detector reports no hands once the recording is exhausted.
func NewReplayDetector(frames []*HandLandmarks, loop bool) *ReplayDetector {
	return &ReplayDetector{
		frames: frames,
		loop:   loop,
	}
}

// Detect returns the next recorded hand, if any.
func (r *ReplayDetector) Detect(frame *gocv.Mat, ts time.Time) ([]HandLandmarks, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.frames) == 0 {
		return nil, nil
	}

	if r.index >= len(r.frames) {
		if !r.loop {
			return nil, nil
		}
		r.index = 0
	}

	hand := r.frames[r.index]
	r.index++

	if hand == nil {
		return nil, nil
	}
	return []HandLandmarks{*hand}, nil
}

// Remaining returns how many recorded frames are left before the end.
func (r *ReplayDetector) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames) - r.index
}

// Close is a no-op for the replay detector.
func (r *ReplayDetector) Close() error {
	return nil
}
