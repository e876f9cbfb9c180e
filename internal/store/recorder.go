package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/zenparticles/internal/detector"
)

// ErrExists is returned when creating a recording whose name is taken.
var ErrExists = errors.New("already exists")

// RecorderFlushEvery is how many frames a Recorder buffers before writing.
const RecorderFlushEvery = 30

// Recorder appends detector output to a new recording, one frame per
// detection tick.
type Recorder struct {
	repo    *RecordingRepository
	rec     *Recording
	start   time.Time
	seq     int
	pending []Frame
	mu      sync.Mutex
}

// NewRecorder creates the recording name and returns a Recorder writing to it.
func NewRecorder(repo *RecordingRepository, name string) (*Recorder, error) {
	if _, err := repo.GetByName(name); err == nil {
		return nil, fmt.Errorf("recording %q: %w", name, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec, err := repo.Create(name)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		repo:    repo,
		rec:     rec,
		pending: make([]Frame, 0, RecorderFlushEvery),
	}, nil
}

// Record buffers one tick. hand may be nil. Timestamps are stored relative
// to the first recorded tick.
func (r *Recorder) Record(hand *detector.HandLandmarks, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seq == 0 {
		r.start = ts
	}
	f := Frame{Sequence: r.seq, TimestampMs: ts.Sub(r.start).Milliseconds()}
	if hand != nil {
		h := *hand
		f.Hand = &h
	}
	r.pending = append(r.pending, f)
	r.seq++

	if len(r.pending) >= RecorderFlushEvery {
		return r.flushLocked()
	}
	return nil
}

// Flush writes buffered frames.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.repo.AppendFrames(r.rec.ID, r.pending); err != nil {
		return fmt.Errorf("recording %q: %w", r.rec.Name, err)
	}
	r.pending = r.pending[:0]
	return nil
}

// Close flushes the remaining frames.
func (r *Recorder) Close() error {
	return r.Flush()
}

// Recording returns the recording being written.
func (r *Recorder) Recording() *Recording {
	return r.rec
}

// Count returns the number of ticks recorded so far, flushed or not.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}
