package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/zenparticles/internal/detector"
)

// Recording is a named stream of detector output.
type Recording struct {
	ID        string
	Name      string
	CreatedAt time.Time
	// Frames is the number of stored frames. Filled by Get and List.
	Frames int
}

// Frame is one detection tick of a recording. Hand is nil when no hand was
// in view.
type Frame struct {
	Sequence    int
	TimestampMs int64
	Hand        *detector.HandLandmarks
}

// RecordingRepository provides CRUD operations for recordings and their frames.
type RecordingRepository struct {
	db *sql.DB
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db}
}

// Create inserts a new, empty recording and assigns it an ID.
func (r *RecordingRepository) Create(name string) (*Recording, error) {
	rec := &Recording{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO recordings (id, name, created_at) VALUES (?, ?, ?)`,
		rec.ID, rec.Name, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create recording %q: %w", name, err)
	}
	return rec, nil
}

const selectRecording = `SELECT r.id, r.name, r.created_at,
	(SELECT COUNT(*) FROM recording_frames f WHERE f.recording_id = r.id)
	FROM recordings r`

func scanRecording(row interface{ Scan(...any) error }) (*Recording, error) {
	rec := &Recording{}
	if err := row.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.Frames); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID retrieves a recording by its ID.
func (r *RecordingRepository) GetByID(id string) (*Recording, error) {
	return r.get(selectRecording+` WHERE r.id = ?`, id)
}

// GetByName retrieves a recording by its name.
func (r *RecordingRepository) GetByName(name string) (*Recording, error) {
	return r.get(selectRecording+` WHERE r.name = ?`, name)
}

func (r *RecordingRepository) get(query string, arg string) (*Recording, error) {
	rec, err := scanRecording(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns all recordings, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(selectRecording + ` ORDER BY r.created_at DESC, r.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Delete removes a recording and its frames.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendFrames stores frames for a recording in a single transaction.
func (r *RecordingRepository) AppendFrames(recordingID string, frames []Frame) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO recording_frames (recording_id, sequence, timestamp_ms, present, handedness, score, points)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		present, handedness, score, points := 0, "", 0.0, ""
		if f.Hand != nil {
			data, err := json.Marshal(f.Hand.Points)
			if err != nil {
				return fmt.Errorf("encode frame %d: %w", f.Sequence, err)
			}
			present, handedness, score, points = 1, f.Hand.Handedness, f.Hand.Score, string(data)
		}
		if _, err := stmt.Exec(recordingID, f.Sequence, f.TimestampMs, present, handedness, score, points); err != nil {
			return fmt.Errorf("insert frame %d: %w", f.Sequence, err)
		}
	}

	return tx.Commit()
}

// Frames returns the frames of a recording in sequence order.
func (r *RecordingRepository) Frames(recordingID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT sequence, timestamp_ms, present, handedness, score, points
		 FROM recording_frames
		 WHERE recording_id = ?
		 ORDER BY sequence`,
		recordingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			f          Frame
			present    int
			handedness string
			score      float64
			points     string
		)
		if err := rows.Scan(&f.Sequence, &f.TimestampMs, &present, &handedness, &score, &points); err != nil {
			return nil, err
		}
		if present == 1 {
			hand := &detector.HandLandmarks{Handedness: handedness, Score: score}
			if err := json.Unmarshal([]byte(points), &hand.Points); err != nil {
				return nil, fmt.Errorf("decode frame %d: %w", f.Sequence, err)
			}
			f.Hand = hand
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// Hands returns the recording as the per-tick hand sequence a replay
// detector plays back.
func (r *RecordingRepository) Hands(recordingID string) ([]*detector.HandLandmarks, error) {
	frames, err := r.Frames(recordingID)
	if err != nil {
		return nil, err
	}
	hands := make([]*detector.HandLandmarks, len(frames))
	for i, f := range frames {
		hands[i] = f.Hand
	}
	return hands, nil
}
