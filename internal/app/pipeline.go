package app

import (
	"log"
	"time"

	"github.com/ayusman/zenparticles/internal/capture"
	"github.com/ayusman/zenparticles/internal/detector"
	"github.com/ayusman/zenparticles/internal/gesture"
	"github.com/ayusman/zenparticles/internal/particle"
	"github.com/ayusman/zenparticles/internal/shape"
)

// runDetection polls the camera, classifies the first hand and publishes the
// result into the mailbox.
//
// The polling rate follows motion: ActiveFPS while the scene changes,
// IdleFPS once it has been still for IdleAfter. Hand detection runs on every
// polled frame either way, so a hand held perfectly still keeps its mode.
func (a *App) runDetection(stop <-chan struct{}, det detector.Detector) {
	defer a.wg.Done()

	gov := capture.NewRateGovernor(a.config.ActiveFPS, a.config.IdleFPS, a.config.IdleAfter, time.Now())
	a.camera.SetFPS(gov.FPS())

	ticker := time.NewTicker(gov.Interval())
	defer ticker.Stop()

	paused := false

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				if !paused {
					paused = true
					a.publish(nil, now, false)
					log.Println("Tracking paused")
				}
				continue
			}
			if paused {
				paused = false
				a.motion.Reset()
				log.Println("Tracking resumed")
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if !a.config.FixedRate {
				motion, _ := a.motion.Detect(frame)
				if fps, changed := gov.Observe(motion, now); changed {
					a.camera.SetFPS(fps)
					ticker.Reset(gov.Interval())
					log.Printf("Camera rate set to %d fps", fps)
				}
			}

			hands, err := det.Detect(frame, now)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			a.publish(detector.FirstHand(hands), now, true)
		}
	}
}

// publish classifies hand, stores the result for the render loop and
// reports visible status changes. It runs on the detection goroutine.
func (a *App) publish(hand *detector.HandLandmarks, ts time.Time, record bool) gesture.InteractionState {
	state := a.classifier.Classify(hand)
	a.mailbox.Store(state)

	if record && a.recorder != nil {
		if err := a.recorder.Record(hand, ts); err != nil {
			log.Printf("Error recording frame: %v", err)
		}
	}

	if status, changed := a.tracker.Update(state); changed {
		a.status.Store(&status)
		a.mu.RLock()
		fn := a.onStatus
		a.mu.RUnlock()
		if fn != nil {
			fn(status)
		}
	}
	return state
}

// runRender advances the simulation at RenderFPS and hands each frame to the
// consumers. Breathing time counts from started.
func (a *App) runRender(stop <-chan struct{}, started time.Time) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.RenderFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			a.renderTick(now.Sub(started).Seconds())
		}
	}
}

// renderTick performs one render step: a single mailbox read, then either a
// pending shape switch (the buffer snaps, nothing else moves this tick) or a
// transform update plus simulation step.
func (a *App) renderTick(elapsed float64) Frame {
	state := a.mailbox.Load()

	if next := a.pendingShape.Swap(nil); next != nil {
		a.sim.SetTarget(shape.Generate(*next, a.config.ParticleCount, a.shapeRng))
		a.shape.Store(int32(*next))
		log.Printf("Shape set to %s", *next)
	} else {
		a.controller.Update(state)
		a.sim.Step(state, elapsed)
	}

	a.seq++
	explosion := a.sim.Explosion()
	frame := Frame{
		Seq:         a.seq,
		Elapsed:     elapsed,
		Positions:   a.sim.Snapshot(),
		Rotation:    a.controller.Rotation(),
		Roll:        a.controller.Roll(),
		Orientation: a.controller.Orientation(),
		Explosion:   explosion,
		Style:       particle.StyleFor(a.Color(), explosion),
		Shape:       a.Shape(),
		Status:      a.Status(),
		Paused:      !a.IsEnabled(),
	}

	a.mu.RLock()
	consumers := a.consumers
	a.mu.RUnlock()
	for _, c := range consumers {
		c.Consume(frame)
	}
	return frame
}
