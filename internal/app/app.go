// Package app wires the camera, hand detector, gesture classifier and
// particle simulation into two loops: detection at camera rate and
// rendering at display rate.
package app

import (
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/zenparticles/internal/capture"
	"github.com/ayusman/zenparticles/internal/detector"
	"github.com/ayusman/zenparticles/internal/gesture"
	"github.com/ayusman/zenparticles/internal/particle"
	"github.com/ayusman/zenparticles/internal/shape"
	"github.com/ayusman/zenparticles/internal/transform"
)

// Loop defaults.
const (
	// ActiveFPS is the camera rate while something moves in view.
	ActiveFPS = 30
	// IdleFPS is the camera rate after IdleAfter without motion.
	IdleFPS = 10
	// IdleAfter is how long without motion before switching to IdleFPS.
	IdleAfter = 2 * time.Second
	// RenderFPS is the simulation and drawing rate.
	RenderFPS = 60
)

// Config holds configuration options for the application. Zero values pick
// the defaults above.
type Config struct {
	CameraID     int
	ActiveFPS    int
	IdleFPS      int
	IdleAfter    time.Duration
	MotionThresh float64
	// FixedRate keeps the camera at ActiveFPS regardless of motion. Used
	// when replaying recordings from a synthetic camera.
	FixedRate bool

	ParticleCount int
	Shape         shape.Type
	Color         colorful.Color
	RenderFPS     int
	// Seed fixes the random source; 0 seeds from the clock.
	Seed uint64

	// Camera and Detector override the device camera and the MediaPipe
	// detector.
	Camera   capture.Camera
	Detector detector.Detector
	// Recorder, when set, receives every classified detection tick.
	Recorder Recorder
}

// Recorder receives the hand seen on each detection tick (nil if none).
type Recorder interface {
	Record(hand *detector.HandLandmarks, ts time.Time) error
}

// Consumer receives a Frame on every render tick. Consume is called on the
// render goroutine and must not block.
type Consumer interface {
	Consume(Frame)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(Frame)

func (f ConsumerFunc) Consume(fr Frame) { f(fr) }

// Frame is the per-tick snapshot handed to consumers.
type Frame struct {
	Seq         uint64
	Elapsed     float64 // seconds since Start
	Positions   []float64
	Rotation    mgl64.Quat
	Roll        float64
	Orientation mgl64.Quat
	Explosion   float64
	Style       particle.Style
	Shape       shape.Type
	Status      gesture.Status
	Paused      bool
}

// App owns the shared interaction slot and both loops.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	recorder Recorder

	// Written by the detection loop only.
	classifier *gesture.Classifier
	tracker    *gesture.StatusTracker

	mailbox *gesture.Mailbox
	status  atomic.Pointer[gesture.Status]

	// Owned by the render loop.
	controller *transform.Controller
	sim        *particle.Simulator
	shapeRng   *rand.Rand
	seq        uint64

	pendingShape atomic.Pointer[shape.Type]
	shape        atomic.Int32
	color        atomic.Pointer[colorful.Color]
	enabled      atomic.Bool

	mu        sync.RWMutex
	consumers []Consumer
	onStatus  func(gesture.Status)
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// New creates an App. When no detector is configured it tries MediaPipe; if
// that is unavailable the app still renders and stays idle.
func New(config Config) *App {
	config = withDefaults(config)

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	// Shapes and per-frame jitter draw from separate streams, so a shape
	// generated after a switch does not depend on how long the app ran.
	shapeRng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	jitterRng := rand.New(rand.NewPCG(seed^0xbf58476d1ce4e5b9, seed+1))

	a := &App{
		config:     config,
		camera:     config.Camera,
		motion:     capture.NewMotionDetector(config.MotionThresh),
		detector:   config.Detector,
		recorder:   config.Recorder,
		classifier: gesture.NewClassifier(),
		tracker:    gesture.NewStatusTracker(),
		mailbox:    gesture.NewMailbox(),
		controller: transform.NewController(),
		shapeRng:   shapeRng,
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}

	a.sim = particle.NewSimulator(shape.Generate(config.Shape, config.ParticleCount, shapeRng), jitterRng)
	a.shape.Store(int32(config.Shape))
	color := config.Color
	a.color.Store(&color)
	idle := a.tracker.Current()
	a.status.Store(&idle)
	a.enabled.Store(true)

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("Hand detection unavailable (%v), running idle", err)
		}
	}

	return a
}

func withDefaults(c Config) Config {
	if c.ActiveFPS <= 0 {
		c.ActiveFPS = ActiveFPS
	}
	if c.IdleFPS <= 0 {
		c.IdleFPS = IdleFPS
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = IdleAfter
	}
	if c.MotionThresh <= 0 {
		c.MotionThresh = 1.0 // 1% pixel change
	}
	if c.ParticleCount <= 0 {
		c.ParticleCount = shape.DefaultCount
	}
	if c.RenderFPS <= 0 {
		c.RenderFPS = RenderFPS
	}
	if c.Color == (colorful.Color{}) {
		c.Color, _ = particle.ParseColor(particle.DefaultColor)
	}
	return c
}

// SetShape requests a new target shape. It takes effect on the next render
// tick. Safe to call from any goroutine.
func (a *App) SetShape(t shape.Type) {
	a.pendingShape.Store(&t)
}

// Shape returns the shape currently rendered.
func (a *App) Shape() shape.Type {
	return shape.Type(a.shape.Load())
}

// SetColor changes the base particle color. Safe to call from any goroutine.
func (a *App) SetColor(c colorful.Color) {
	a.color.Store(&c)
}

// Color returns the base particle color.
func (a *App) Color() colorful.Color {
	return *a.color.Load()
}

// SetEnabled pauses or resumes hand tracking. While paused the detection
// loop publishes the idle state.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

// IsEnabled returns whether hand tracking is running.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// SetDetector replaces the hand detector. Call before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector, or nil if none is available.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// AddConsumer registers c to receive every rendered Frame.
func (a *App) AddConsumer(c Consumer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.consumers = append(a.consumers, c)
}

// OnStatus sets the callback invoked from the detection loop whenever the
// status changes visibly.
func (a *App) OnStatus(fn func(gesture.Status)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStatus = fn
}

// Status returns the last reported status.
func (a *App) Status() gesture.Status {
	return *a.status.Load()
}

// State returns the interaction state most recently published by the
// detection loop.
func (a *App) State() gesture.InteractionState {
	return a.mailbox.Load()
}

// Start launches the render loop and, if a detector is available and the
// camera opens, the detection loop. Calling Start on a running App is a
// no-op. A camera that cannot be opened is logged and the app stays idle.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	stop := make(chan struct{})
	a.stopCh = stop

	a.wg.Add(1)
	go a.runRender(stop, time.Now())

	if a.detector == nil {
		log.Println("No hand detector, detection loop not started")
	} else if err := a.camera.Open(); err != nil {
		log.Printf("Camera unavailable (%v), running idle", err)
	} else {
		a.wg.Add(1)
		go a.runDetection(stop, a.detector)
		log.Println("Detection loop started")
	}

	return nil
}

// Stop halts both loops and releases the camera and detector. Calling Stop
// twice, or before Start, is a no-op.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	det := a.detector
	a.mu.Unlock()

	a.wg.Wait()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if det != nil {
		if err := det.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Stopped")
}

// Running reports whether Start has been called without a matching Stop.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}
