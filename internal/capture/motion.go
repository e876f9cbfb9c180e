package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frames are reduced to a small grayscale thumbnail before differencing.
const (
	ThumbWidth  = 160
	ThumbHeight = 120
	// SmoothKernel is the box blur size applied to each thumbnail.
	SmoothKernel = 5
	// PixelDelta is the per-pixel intensity change that counts as motion.
	PixelDelta = 25
)

// MotionDetector reports how much of the scene changed since the previous
// frame. It only drives the camera polling rate; hand detection runs
// regardless of what it reports.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	baseline  gocv.Mat
	hasBase   bool
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of the thumbnail changes between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether it moved
// and the changed percentage. The first frame after creation or Reset only
// becomes the baseline. Frames of any resolution compare against each other.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	thumb := thumbnail(frame)
	defer thumb.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasBase {
		thumb.CopyTo(&m.baseline)
		m.hasBase = true
		return false, 0
	}

	pct := changedPercent(thumb, m.baseline)
	thumb.CopyTo(&m.baseline)
	return pct > m.threshold, pct
}

// Reset forgets the baseline, e.g. after tracking was paused.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasBase = false
}

// Close releases the baseline.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasBase = false
	m.baseline.Close()
	m.baseline = gocv.NewMat()
}

func thumbnail(frame *gocv.Mat) gocv.Mat {
	small := gocv.NewMat()
	gocv.Resize(*frame, &small, image.Pt(ThumbWidth, ThumbHeight), 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}
	small.Close()

	smooth := gocv.NewMat()
	gocv.Blur(gray, &smooth, image.Pt(SmoothKernel, SmoothKernel))
	gray.Close()
	return smooth
}

func changedPercent(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, PixelDelta, 255, gocv.ThresholdBinary)

	return float64(gocv.CountNonZero(mask)) / float64(mask.Total()) * 100
}
