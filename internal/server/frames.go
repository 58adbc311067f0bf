package server

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// jpegFrame is an encoded image and its position in the surface's stream.
type jpegFrame struct {
	data []byte
	seq  uint64
}

// FrameSink is a display sink that keeps the latest JPEG of every surface
// for the MJPEG stream. Surfaces nobody is watching are not encoded.
type FrameSink struct {
	mu       sync.RWMutex
	frames   map[string]jpegFrame
	watchers map[string]int
}

// NewFrameSink creates an empty FrameSink.
func NewFrameSink() *FrameSink {
	return &FrameSink{
		frames:   make(map[string]jpegFrame),
		watchers: make(map[string]int),
	}
}

// Show encodes img as JPEG and stores it as the latest frame of name.
func (s *FrameSink) Show(name string, img gocv.Mat) error {
	s.mu.RLock()
	watched := s.watchers[name] > 0
	s.mu.RUnlock()
	if !watched {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[name] = jpegFrame{data: data, seq: s.frames[name].seq + 1}
	return nil
}

// PollQuit always returns false; HTTP clients cannot stop the loop.
func (s *FrameSink) PollQuit() bool {
	return false
}

// Latest returns the most recent JPEG of a surface and its sequence number.
func (s *FrameSink) Latest(name string) ([]byte, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.frames[name]
	if !ok {
		return nil, 0, false
	}
	return f.data, f.seq, true
}

// Watch registers interest in a surface until the returned func is called.
func (s *FrameSink) Watch(name string) (release func()) {
	s.mu.Lock()
	s.watchers[name]++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.watchers[name]--
			if s.watchers[name] <= 0 {
				delete(s.watchers, name)
				delete(s.frames, name)
			}
		})
	}
}

// Watchers returns how many streams are watching a surface.
func (s *FrameSink) Watchers(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchers[name]
}
