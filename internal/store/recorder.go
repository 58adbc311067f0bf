package store

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ayusman/fingercount/internal/vision"
	"github.com/google/uuid"
)

// DefaultBatchSize is how many readings the recorder buffers before
// writing them in one transaction.
const DefaultBatchSize = 30

// Recorder writes every reading of a frame loop run to the store. Each
// run becomes a session. Nothing it stores is read back by the loop.
type Recorder struct {
	store     *Store
	source    string
	roi       string
	batchSize int

	mu      sync.Mutex
	session *Session
	pending []Reading
}

// NewRecorder creates a recorder for runs against source, analysing roi.
func NewRecorder(s *Store, source string, roi image.Rectangle) *Recorder {
	return &Recorder{
		store:     s,
		source:    source,
		roi:       FormatROI(roi),
		batchSize: DefaultBatchSize,
	}
}

// SetBatchSize changes how many readings are buffered per write.
func (r *Recorder) SetBatchSize(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchSize = n
}

// Session returns the session being recorded, or nil between runs.
func (r *Recorder) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	sess := *r.session
	return &sess
}

// Started opens a new session.
func (r *Recorder) Started() {
	if err := r.Start(); err != nil {
		log.Printf("Error starting session: %v", err)
	}
}

// Start opens a new session, ending the previous one if it is still open.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		if err := r.endLocked(r.session.Frames); err != nil {
			return err
		}
	}

	sess := &Session{
		ID:        uuid.New().String(),
		Source:    r.source,
		ROI:       r.roi,
		StartedAt: time.Now(),
	}
	if err := r.store.Sessions().Create(sess); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	r.session = sess
	log.Printf("Recording session %s (source %s)", sess.ID, sess.Source)
	return nil
}

// Observe buffers a reading and flushes the buffer when it is full.
// Readings outside a session are dropped.
func (r *Recorder) Observe(reading vision.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return
	}

	r.pending = append(r.pending, Reading{
		SessionID:    r.session.ID,
		Seq:          reading.Seq,
		Count:        reading.Count,
		ContourArea:  reading.ContourArea,
		HullVertices: reading.HullVertices,
		Defects:      reading.Defects,
		Valleys:      reading.Valleys,
		CapturedAt:   reading.Timestamp,
	})
	r.session.Frames++

	if len(r.pending) >= r.batchSize {
		if err := r.flushLocked(); err != nil {
			log.Printf("Error writing readings: %v", err)
		}
	}
}

// Stopped flushes the remaining readings and ends the session.
func (r *Recorder) Stopped(frames int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return
	}
	if err := r.endLocked(frames); err != nil {
		log.Printf("Error ending session: %v", err)
	}
}

// Close ends the current session, if any.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil
	}
	return r.endLocked(r.session.Frames)
}

func (r *Recorder) flushLocked() error {
	if len(r.pending) == 0 {
		return nil
	}
	err := r.store.Readings().Create(r.pending)
	r.pending = r.pending[:0]
	return err
}

func (r *Recorder) endLocked(frames int64) error {
	id := r.session.ID
	flushErr := r.flushLocked()
	r.session = nil

	if err := r.store.Sessions().End(id, frames, time.Now()); err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	if flushErr != nil {
		return fmt.Errorf("flush session %s: %w", id, flushErr)
	}

	log.Printf("Session %s ended after %d frames", id, frames)
	return nil
}

// FormatROI renders a rectangle as "x0,y0,x1,y1".
func FormatROI(r image.Rectangle) string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}
