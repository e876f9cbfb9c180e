package app

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayusman/zenparticles/internal/capture"
	"github.com/ayusman/zenparticles/internal/detector"
	"github.com/ayusman/zenparticles/internal/gesture"
	"github.com/ayusman/zenparticles/internal/particle"
	"github.com/ayusman/zenparticles/internal/shape"
)

const epsilon = 1e-9

func newTestApp(t *testing.T) (*App, *detector.MockDetector, *capture.MockCamera) {
	t.Helper()

	det := detector.NewMockDetector()
	cam := capture.NewMockCamera(nil, false)
	a := New(Config{
		ParticleCount: 200,
		Seed:          7,
		Camera:        cam,
		Detector:      det,
	})
	t.Cleanup(a.Stop)
	return a, det, cam
}

func ptr(h detector.HandLandmarks) *detector.HandLandmarks {
	return &h
}

type fakeRecorder struct {
	mu    sync.Mutex
	hands []*detector.HandLandmarks
	err   error
}

func (r *fakeRecorder) Record(hand *detector.HandLandmarks, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hands = append(r.hands, hand)
	return r.err
}

func TestNew_Defaults(t *testing.T) {
	a, _, _ := newTestApp(t)

	if a.Shape() != shape.Heart {
		t.Errorf("Shape() = %v, want Heart", a.Shape())
	}
	if got := a.Color().Hex(); got != particle.DefaultColor {
		t.Errorf("Color() = %s, want %s", got, particle.DefaultColor)
	}
	if a.State() != gesture.Idle() {
		t.Errorf("State() = %+v, want idle", a.State())
	}
	if !a.IsEnabled() {
		t.Error("IsEnabled() = false, want true")
	}
	if a.config.RenderFPS != RenderFPS || a.config.ActiveFPS != ActiveFPS || a.config.IdleFPS != IdleFPS {
		t.Errorf("config = %+v", a.config)
	}
}

func TestApp_PublishDrivesRender(t *testing.T) {
	a, _, _ := newTestApp(t)

	state := a.publish(ptr(detector.OpenPalmLandmarks()), time.Now(), true)
	if state.Mode != gesture.ModeZoom || state.ZoomFactor != 1 {
		t.Fatalf("publish() = %+v, want ZOOM at 1", state)
	}

	f1 := a.renderTick(0)
	if math.Abs(f1.Explosion-0.1) > epsilon {
		t.Errorf("explosion after 1 tick = %v, want 0.1", f1.Explosion)
	}
	f2 := a.renderTick(1.0 / 60)
	if math.Abs(f2.Explosion-0.19) > epsilon {
		t.Errorf("explosion after 2 ticks = %v, want 0.19", f2.Explosion)
	}
	if f2.Seq != f1.Seq+1 {
		t.Errorf("Seq = %d after %d", f2.Seq, f1.Seq)
	}
	if len(f2.Positions) != 3*200 {
		t.Errorf("len(Positions) = %d, want 600", len(f2.Positions))
	}
	if f2.Style.Size <= particle.BaseSize {
		t.Errorf("Style.Size = %v, want above base while bursting", f2.Style.Size)
	}

	// Fist pulls the explosion back.
	a.publish(ptr(detector.FistLandmarks()), time.Now(), true)
	f3 := a.renderTick(2.0 / 60)
	if f3.Explosion >= f2.Explosion {
		t.Errorf("explosion = %v, want below %v after fist", f3.Explosion, f2.Explosion)
	}
}

func TestApp_ShapeChangeSnaps(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.publish(ptr(detector.OpenPalmLandmarks()), time.Now(), true)
	for i := 0; i < 5; i++ {
		a.renderTick(float64(i) / 60)
	}
	before := a.renderTick(5.0 / 60)

	a.SetShape(shape.Saturn)
	a.SetShape(shape.Zen)
	after := a.renderTick(6.0 / 60)

	if after.Shape != shape.Zen || a.Shape() != shape.Zen {
		t.Fatalf("Shape = %v, want the last requested shape", after.Shape)
	}
	target := a.sim.Target()
	for i, v := range after.Positions {
		if v != target[i] {
			t.Fatalf("positions[%d] = %v, want exactly %v", i, v, target[i])
		}
	}
	if after.Explosion != before.Explosion {
		t.Errorf("explosion changed on shape switch: %v -> %v", before.Explosion, after.Explosion)
	}
	if after.Rotation != before.Rotation || after.Roll != before.Roll {
		t.Error("orientation changed on shape switch")
	}

	// The following tick resumes normal stepping.
	next := a.renderTick(7.0 / 60)
	if next.Explosion == after.Explosion {
		t.Error("expected explosion to move on the tick after a switch")
	}
}

func TestApp_SetColor(t *testing.T) {
	a, _, _ := newTestApp(t)
	c, _ := particle.ParseColor("#4d94ff")

	a.SetColor(c)
	f := a.renderTick(0)

	// Resting explosion is small, so the color stays close to the base.
	if d := f.Style.Color.DistanceRgb(c); d > 0.1 {
		t.Errorf("Style.Color = %s, want near %s", f.Style.Color.Hex(), c.Hex())
	}
}

func TestApp_StatusCallback(t *testing.T) {
	a, _, _ := newTestApp(t)

	var got []gesture.Status
	a.OnStatus(func(s gesture.Status) {
		got = append(got, s)
	})

	now := time.Now()
	a.publish(ptr(detector.OpenPalmLandmarks()), now, true)
	a.publish(ptr(detector.OpenPalmLandmarks()), now, true)
	a.publish(ptr(detector.PointingLandmarks()), now, true)
	a.publish(nil, now, true)

	if len(got) != 3 {
		t.Fatalf("callback fired %d times, want 3: %+v", len(got), got)
	}
	if got[0].Mode != gesture.ModeZoom || got[1].Mode != gesture.ModeRotate || got[2].Active {
		t.Errorf("statuses = %+v", got)
	}
	if a.Status().Text() != "NO HANDS DETECTED" {
		t.Errorf("Status().Text() = %q", a.Status().Text())
	}
}

func TestApp_Recorder(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	a := New(Config{
		ParticleCount: 10,
		Camera:        capture.NewMockCamera(nil, false),
		Detector:      detector.NewMockDetector(),
		Recorder:      rec,
	})

	a.publish(ptr(detector.VictoryLandmarks()), time.Now(), true)
	a.publish(nil, time.Now(), true)
	a.publish(nil, time.Now(), false)

	// Errors are logged, not fatal; paused ticks are not recorded.
	if len(rec.hands) != 2 || rec.hands[0] == nil || rec.hands[1] != nil {
		t.Errorf("recorded %v", rec.hands)
	}
	if a.State().Mode != gesture.ModeIdle {
		t.Errorf("State().Mode = %v, want IDLE", a.State().Mode)
	}
}

func TestApp_StartStopIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.SetDetector(nil)

	var frames atomic.Int64
	a.AddConsumer(ConsumerFunc(func(Frame) { frames.Add(1) }))

	a.Stop() // before Start

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if !a.Running() {
		t.Fatal("Running() = false after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for frames.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if frames.Load() < 3 {
		t.Fatalf("consumer saw %d frames, want at least 3", frames.Load())
	}

	a.Stop()
	a.Stop()
	if a.Running() {
		t.Error("Running() = true after Stop")
	}

	// No frames after Stop returns.
	n := frames.Load()
	time.Sleep(50 * time.Millisecond)
	if frames.Load() != n {
		t.Error("consumer still receiving frames after Stop")
	}
}

func TestApp_CameraDeniedStaysIdle(t *testing.T) {
	a, det, cam := newTestApp(t)
	cam.SetOpenError(errors.New("permission denied"))
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	a.Stop()

	if det.Calls() != 0 {
		t.Errorf("detector called %d times without a camera", det.Calls())
	}
	if a.State() != gesture.Idle() {
		t.Errorf("State() = %+v, want idle", a.State())
	}
}

func TestApp_ShapeSwitchIndependentOfRunTime(t *testing.T) {
	short, _, _ := newTestApp(t)
	long, _, _ := newTestApp(t)

	long.publish(ptr(detector.OpenPalmLandmarks()), time.Now(), true)
	for i := 0; i < 120; i++ {
		long.renderTick(float64(i) / 60)
	}

	short.SetShape(shape.Flower)
	long.SetShape(shape.Flower)
	a := short.renderTick(0)
	b := long.renderTick(2)

	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("positions[%d] = %v vs %v, want the same Flower for the same seed", i, a.Positions[i], b.Positions[i])
		}
	}
}
