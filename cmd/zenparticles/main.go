package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"github.com/ayusman/zenparticles/internal/app"
	"github.com/ayusman/zenparticles/internal/capture"
	"github.com/ayusman/zenparticles/internal/config"
	"github.com/ayusman/zenparticles/internal/detector"
	"github.com/ayusman/zenparticles/internal/gesture"
	"github.com/ayusman/zenparticles/internal/particle"
	"github.com/ayusman/zenparticles/internal/render"
	"github.com/ayusman/zenparticles/internal/shape"
	"github.com/ayusman/zenparticles/internal/store"
	"github.com/ayusman/zenparticles/internal/tray"
)

func init() {
	// OpenCV windows and the tray event loop want the main thread.
	runtime.LockOSThread()
}

func main() {
	fmt.Println("Zen Particles - hand controlled particle field")

	configPath := flag.String("config", config.DefaultPath, "path to TOML config file")
	cameraID := flag.Int("camera", 0, "camera device id")
	shapeName := flag.String("shape", "", "initial shape (Heart, Flower, Saturn, Zen, Fireworks)")
	colorHex := flag.String("color", "", "initial particle color as #rrggbb")
	count := flag.Int("count", 0, "number of particles")
	seed := flag.Uint64("seed", 0, "random seed (0 = time based)")
	noWindow := flag.Bool("no-window", false, "do not open the render window")
	noTray := flag.Bool("no-tray", false, "do not show the tray control panel")
	dbPath := flag.String("db", "", "recordings database path")
	record := flag.String("record", "", "record detector output under this name")
	replay := flag.String("replay", "", "replay the named recording instead of the camera")
	loop := flag.Bool("loop", false, "loop the replayed recording")
	list := flag.Bool("list", false, "list recordings and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command-line flags override file values only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.Camera.DeviceID = *cameraID
		case "shape":
			cfg.Particles.Shape = *shapeName
		case "color":
			cfg.Particles.Color = *colorHex
		case "count":
			cfg.Particles.Count = *count
		case "seed":
			cfg.Particles.Seed = *seed
		case "no-window":
			cfg.Window.Enabled = !*noWindow
		case "no-tray":
			cfg.Tray.Enabled = !*noTray
		case "db":
			cfg.Store.Path = *dbPath
		case "record":
			cfg.Store.Record = *record
		case "replay":
			cfg.Store.Replay = *replay
		case "loop":
			cfg.Store.Loop = *loop
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	initialShape, _ := shape.Parse(cfg.Particles.Shape)
	initialColor, _ := particle.ParseColor(cfg.Particles.Color)

	var st *store.Store
	if *list || cfg.Store.Record != "" || cfg.Store.Replay != "" {
		st, err = openStore(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to initialize store: %v", err)
		}
		defer st.Close()
	}

	if *list {
		if err := listRecordings(st); err != nil {
			log.Fatalf("Failed to list recordings: %v", err)
		}
		return
	}

	appCfg := app.Config{
		CameraID:      cfg.Camera.DeviceID,
		ActiveFPS:     cfg.Camera.ActiveFPS,
		IdleFPS:       cfg.Camera.IdleFPS,
		IdleAfter:     time.Duration(cfg.Camera.IdleAfterMs) * time.Millisecond,
		MotionThresh:  cfg.Camera.MotionThreshold,
		ParticleCount: cfg.Particles.Count,
		Shape:         initialShape,
		Color:         initialColor,
		RenderFPS:     cfg.Particles.RenderFPS,
		Seed:          cfg.Particles.Seed,
	}

	if cfg.Store.Replay != "" {
		blank := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
		defer blank.Close()

		det, err := replayDetector(st, cfg.Store.Replay, cfg.Store.Loop)
		if err != nil {
			log.Fatalf("Failed to load recording: %v", err)
		}
		appCfg.Detector = det
		appCfg.Camera = capture.NewMockCamera([]*gocv.Mat{&blank}, true)
		appCfg.FixedRate = true
	}

	if cfg.Store.Record != "" {
		rec, err := store.NewRecorder(st.Recordings(), cfg.Store.Record)
		if err != nil {
			log.Fatalf("Failed to start recording: %v", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Printf("Error flushing recording: %v", err)
			}
			log.Printf("Recorded %d frames as %q", rec.Count(), cfg.Store.Record)
		}()
		appCfg.Recorder = rec
	}

	application := app.New(appCfg)

	done := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(done) }) }

	var panel *tray.Tray
	if cfg.Tray.Enabled {
		panel = tray.New(particle.Palette, initialShape, cfg.Particles.Color)
		panel.OnShape(application.SetShape)
		panel.OnColor(func(hex string) {
			if c, err := particle.ParseColor(hex); err == nil {
				application.SetColor(c)
			}
		})
		panel.OnToggle(application.SetEnabled)
		panel.OnQuit(quit)
	}

	application.OnStatus(func(s gesture.Status) {
		log.Printf("Status: %s", s.Text())
		if panel != nil {
			panel.SetStatus(s)
		}
	})

	var window *render.Window
	if cfg.Window.Enabled {
		window = render.NewWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		defer window.Close()
		var mirror controlPanel
		if panel != nil {
			mirror = panel
		}
		window.OnKey(keyHandler(application, mirror))
		application.AddConsumer(window)
	}

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down")
		quit()
	}()

	switch {
	case window != nil:
		if panel != nil {
			if runtime.GOOS == "darwin" {
				log.Println("Tray disabled: the render window owns the main thread on macOS")
			} else {
				go panel.Run()
				defer panel.Quit()
			}
		}
		if err := window.Run(done); err != nil && !errors.Is(err, render.ErrClosed) {
			log.Printf("Window error: %v", err)
		}
	case panel != nil:
		go func() {
			<-done
			panel.Quit()
		}()
		panel.Run()
	default:
		<-done
	}
}

func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return store.New(path)
}

func listRecordings(st *store.Store) error {
	recs, err := st.Recordings().List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No recordings")
		return nil
	}
	for _, r := range recs {
		fmt.Printf("%-24s %6d frames  %s\n", r.Name, r.Frames, r.CreatedAt.Format(time.DateTime))
	}
	return nil
}

func replayDetector(st *store.Store, name string, loop bool) (*detector.ReplayDetector, error) {
	rec, err := st.Recordings().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("recording %q: %w", name, err)
	}
	hands, err := st.Recordings().Hands(rec.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("Replaying %q (%d frames)", rec.Name, len(hands))
	return detector.NewReplayDetector(hands, loop), nil
}

// controlPanel mirrors changes made from the window keys.
type controlPanel interface {
	SetShape(shape.Type)
	SetColor(hex string)
	SetEnabled(bool)
}

// keyHandler maps window keys: 1-5 pick a shape, c cycles the palette,
// space or p toggles tracking. panel may be nil.
func keyHandler(a *app.App, panel controlPanel) func(int) {
	shapes := shape.All()

	return func(key int) {
		switch {
		case key >= '1' && key < '1'+len(shapes):
			s := shapes[key-'1']
			a.SetShape(s)
			if panel != nil {
				panel.SetShape(s)
			}
		case key == 'c':
			hex := nextColor(a.Color())
			if c, err := particle.ParseColor(hex); err == nil {
				a.SetColor(c)
				if panel != nil {
					panel.SetColor(hex)
				}
			}
		case key == ' ' || key == 'p':
			enabled := !a.IsEnabled()
			a.SetEnabled(enabled)
			if panel != nil {
				panel.SetEnabled(enabled)
			}
		}
	}
}

// nextColor returns the palette entry after current, or the first entry
// when current is not in the palette.
func nextColor(current colorful.Color) string {
	for i, hex := range particle.Palette {
		if c, err := particle.ParseColor(hex); err == nil && c.Hex() == current.Hex() {
			return particle.Palette[(i+1)%len(particle.Palette)]
		}
	}
	return particle.Palette[0]
}
