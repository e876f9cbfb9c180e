package e2e

import (
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/zenparticles/internal/app"
	"github.com/ayusman/zenparticles/internal/capture"
	"github.com/ayusman/zenparticles/internal/detector"
	"github.com/ayusman/zenparticles/internal/gesture"
	"github.com/ayusman/zenparticles/internal/shape"
	"github.com/ayusman/zenparticles/internal/store"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func blankCamera(t *testing.T) *capture.MockCamera {
	t.Helper()
	frame := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return capture.NewMockCamera([]*gocv.Mat{&frame}, true)
}

func TestE2E_RecordAndReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	var recorded *store.Recording

	t.Run("Record", func(t *testing.T) {
		rec, err := store.NewRecorder(s.Recordings(), "victory-then-palm")
		if err != nil {
			t.Fatalf("NewRecorder() error = %v", err)
		}

		det := detector.NewMockDetector()
		det.SetHands([]detector.HandLandmarks{detector.VictoryLandmarks()})

		a := app.New(app.Config{
			ParticleCount: 100,
			Camera:        blankCamera(t),
			Detector:      det,
			Recorder:      rec,
			FixedRate:     true,
		})
		if err := a.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		waitFor(t, "ROLL", func() bool { return a.State().Mode == gesture.ModeRoll })
		det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
		waitFor(t, "ZOOM", func() bool { return a.State().Mode == gesture.ModeZoom })
		a.Stop()

		if err := rec.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		recorded = rec.Recording()
	})

	t.Run("Replay", func(t *testing.T) {
		if recorded == nil {
			t.Skip("nothing recorded")
		}

		hands, err := s.Recordings().Hands(recorded.ID)
		if err != nil {
			t.Fatalf("Hands() error = %v", err)
		}
		if len(hands) < 2 {
			t.Fatalf("recorded %d frames, want at least 2", len(hands))
		}

		a := app.New(app.Config{
			ParticleCount: 100,
			Shape:         shape.Fireworks,
			Camera:        blankCamera(t),
			Detector:      detector.NewReplayDetector(hands, false),
			FixedRate:     true,
		})

		var modes []gesture.Mode
		statuses := make(chan gesture.Status, 64)
		a.OnStatus(func(st gesture.Status) { statuses <- st })

		if err := a.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		defer a.Stop()

		// The recording ends, after which the replay reports no hand.
		waitFor(t, "end of replay", func() bool {
			for {
				select {
				case st := <-statuses:
					modes = append(modes, st.Mode)
					if !st.Active {
						return true
					}
				default:
					return false
				}
			}
		})

		if len(modes) < 3 || modes[0] != gesture.ModeRoll || modes[1] != gesture.ModeZoom {
			t.Errorf("replayed modes = %v, want ROLL, ZOOM, IDLE", modes)
		}
	})
}

func TestE2E_ShapeSwitchWhileTracking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	a := app.New(app.Config{
		ParticleCount: 300,
		Camera:        blankCamera(t),
		Detector:      det,
		FixedRate:     true,
	})

	frames := make(chan app.Frame, 1)
	a.AddConsumer(app.ConsumerFunc(func(f app.Frame) {
		select {
		case frames <- f:
		default:
		}
	}))

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitFor(t, "burst", func() bool { return a.State().Mode == gesture.ModeZoom })

	a.SetShape(shape.Flower)
	waitFor(t, "Flower", func() bool {
		select {
		case f := <-frames:
			return f.Shape == shape.Flower
		default:
			return false
		}
	})

	if a.Shape() != shape.Flower {
		t.Errorf("Shape() = %v, want Flower", a.Shape())
	}
}
