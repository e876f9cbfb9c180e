package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/ayusman/zenparticles/internal/app"
)

// Keys that close the window.
const (
	KeyEscape = 27
	KeyQuit   = 'q'
)

// Opacity scales each particle's contribution before it is added to the
// canvas, so dense regions saturate toward white.
const Opacity = 0.8

var (
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	mutedColor = color.RGBA{R: 150, G: 150, B: 150, A: 0}
)

// Window is an app.Consumer that shows the particle cloud in an OpenCV
// window. Consume may be called from any goroutine; Run must be called from
// the main thread.
type Window struct {
	title  string
	proj   *Projector
	latest atomic.Pointer[app.Frame]

	mu     sync.Mutex
	canvas gocv.Mat
	points []Point
	onKey  func(key int)
}

// NewWindow creates a width x height window. Nothing is shown until Run.
func NewWindow(title string, width, height int) *Window {
	return &Window{
		title:  title,
		proj:   NewProjector(DefaultCamera(), width, height),
		canvas: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
	}
}

// Consume keeps the most recent frame for the next redraw.
func (w *Window) Consume(f app.Frame) {
	w.latest.Store(&f)
}

// OnKey sets the callback for key presses other than the quit keys.
func (w *Window) OnKey(fn func(key int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onKey = fn
}

// Draw renders f into the canvas and returns it. The returned Mat is owned
// by the Window.
func (w *Window) Draw(f *app.Frame) (*gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
	w.points = w.proj.Project(w.points[:0], f.Positions, f.Orientation, f.Style.Size)

	data, err := w.canvas.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("canvas data: %w", err)
	}
	r, g, b := f.Style.Color.Clamped().RGB255()
	bgr := [3]int{
		int(float64(b) * Opacity),
		int(float64(g) * Opacity),
		int(float64(r) * Opacity),
	}
	width, height := w.proj.Size()
	for _, p := range w.points {
		splat(data, width, height, p, bgr)
	}

	gocv.PutText(&w.canvas, f.Status.Text(), image.Pt(16, 32), gocv.FontHersheySimplex, 0.7, textColor, 2)
	label := f.Shape.String()
	if f.Paused {
		label += " (PAUSED)"
	}
	gocv.PutText(&w.canvas, label, image.Pt(16, height-16), gocv.FontHersheySimplex, 0.6, mutedColor, 1)

	return &w.canvas, nil
}

// splat adds a filled disc of color bgr centered on p, saturating at 255.
func splat(data []uint8, width, height int, p Point, bgr [3]int) {
	r2 := p.Radius * p.Radius
	for dy := -p.Radius; dy <= p.Radius; dy++ {
		y := p.Y + dy
		if y < 0 || y >= height {
			continue
		}
		for dx := -p.Radius; dx <= p.Radius; dx++ {
			x := p.X + dx
			if x < 0 || x >= width || dx*dx+dy*dy > r2 {
				continue
			}
			i := (y*width + x) * 3
			for c := 0; c < 3; c++ {
				data[i+c] = uint8(min(int(data[i+c])+bgr[c], 255))
			}
		}
	}
}

// ErrClosed is returned by Run when the user closes the window.
var ErrClosed = errors.New("window closed")

// Run shows frames until stop is closed (nil) or the user closes the window
// or presses Escape or q (ErrClosed).
func (w *Window) Run(stop <-chan struct{}) error {
	win := gocv.NewWindow(w.title)
	defer win.Close()

	width, height := w.proj.Size()
	win.ResizeWindow(width, height)

	var shown uint64
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if f := w.latest.Load(); f != nil && f.Seq != shown {
			img, err := w.Draw(f)
			if err != nil {
				return err
			}
			win.IMShow(*img)
			shown = f.Seq
		}

		key := win.WaitKey(5)
		switch {
		case key == KeyEscape || key == KeyQuit:
			return ErrClosed
		case key >= 0:
			w.mu.Lock()
			fn := w.onKey
			w.mu.Unlock()
			if fn != nil {
				fn(key)
			}
		}

		if shown > 0 && win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return ErrClosed
		}
	}
}

// Close releases the canvas.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas.Close()
}
