// Package app provides the frame loop of the finger counter: it reads
// frames, runs the hand analysis on the region of interest and publishes
// the results to the display sinks and observers.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ayusman/fingercount/internal/capture"
	"github.com/ayusman/fingercount/internal/display"
	"github.com/ayusman/fingercount/internal/vision"
	"gocv.io/x/gocv"
)

// ErrStopped is returned when stepping a loop that has already stopped.
var ErrStopped = errors.New("frame loop stopped")

// State is the lifecycle state of a Loop.
type State int

const (
	// StateRunning means the loop will process another frame.
	StateRunning State = iota
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds configuration options for the frame loop.
type Config struct {
	ROI      image.Rectangle
	Options  vision.Options
	ShowMask bool
}

// DefaultConfig returns the fixed ROI and segmentation parameters.
func DefaultConfig() Config {
	return Config{
		ROI:     vision.DefaultROI,
		Options: vision.DefaultOptions(),
	}
}

// FrameSource delivers camera frames. The caller closes each frame.
type FrameSource interface {
	ReadFrame() (*gocv.Mat, error)
}

// Observer is notified with a copy of every frame's reading.
type Observer interface {
	Observe(r vision.Reading)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(r vision.Reading)

// Observe calls f(r).
func (f ObserverFunc) Observe(r vision.Reading) {
	f(r)
}

// Lifecycle is implemented by observers that want to know when a run
// starts and ends, such as the session recorder.
type Lifecycle interface {
	Started()
	Stopped(frames int64)
}

// Loop runs the capture, analysis and display cycle.
type Loop struct {
	config    Config
	source    FrameSource
	sink      display.Sink
	observers []Observer
	now       func() time.Time

	mu    sync.RWMutex
	state State
	seq   int64
}

// New creates a running Loop. A nil sink discards every image.
func New(config Config, source FrameSource, sink display.Sink, observers ...Observer) *Loop {
	if sink == nil {
		sink = display.Discard{}
	}
	if config.ROI.Empty() {
		config.ROI = vision.DefaultROI
	}
	if config.Options.BlurSize <= 0 {
		config.Options = vision.DefaultOptions()
	}

	return &Loop{
		config:    config,
		source:    source,
		sink:      sink,
		observers: observers,
		now:       time.Now,
		state:     StateRunning,
	}
}

// AddObserver registers o for the readings of subsequent frames.
func (l *Loop) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Frames returns how many frames have been analysed.
func (l *Loop) Frames() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Stop moves the loop to StateStopped. The frame in progress, if any,
// completes first.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateStopped
}

// Run processes frames until the source is exhausted, the sink asks to
// quit, ctx is cancelled or Stop is called. It returns nil in all those
// cases; an ROI that does not fit the frames or a failing source is
// reported as an error.
func (l *Loop) Run(ctx context.Context) error {
	if l.State() == StateStopped {
		return ErrStopped
	}

	lifecycles := l.lifecycles()
	for _, lc := range lifecycles {
		lc.Started()
	}
	log.Println("Frame loop started")

	defer func() {
		frames := l.Frames()
		for _, lc := range lifecycles {
			lc.Stopped(frames)
		}
		log.Printf("Frame loop stopped after %d frames", frames)
	}()

	for l.State() == StateRunning {
		if _, err := l.Step(ctx); err != nil {
			// Stop from another goroutine can land between the two checks
			if errors.Is(err, ErrStopped) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Step runs exactly one cycle of the loop and returns the frame's reading.
// A nil reading with a nil error means the loop stopped without analysing
// a frame.
func (l *Loop) Step(ctx context.Context) (*vision.Reading, error) {
	if l.State() == StateStopped {
		return nil, ErrStopped
	}
	if ctx.Err() != nil {
		l.Stop()
		return nil, nil
	}

	frame, err := l.source.ReadFrame()
	if err != nil {
		l.Stop()
		return nil, readError(err)
	}
	defer frame.Close()

	views, err := vision.ExtractROI(*frame, l.config.ROI)
	if err != nil {
		l.Stop()
		return nil, err
	}
	defer views.Close()

	analysis, err := vision.Analyze(views.ROI, l.config.Options)
	if err != nil {
		l.Stop()
		return nil, fmt.Errorf("analyze frame: %w", err)
	}
	defer analysis.Close()

	vision.DrawCount(&views.Display, analysis.Count)
	l.show(display.SurfaceFrame, views.Display)
	l.show(display.SurfaceROI, analysis.Drawing)
	if l.config.ShowMask {
		l.show(display.SurfaceMask, analysis.Mask)
	}

	l.mu.Lock()
	l.seq++
	reading := analysis.Reading(l.seq, l.now())
	observers := append([]Observer(nil), l.observers...)
	l.mu.Unlock()

	for _, o := range observers {
		o.Observe(reading)
	}

	if l.sink.PollQuit() || ctx.Err() != nil {
		l.Stop()
	}

	return &reading, nil
}

func (l *Loop) show(name string, img gocv.Mat) {
	if err := l.sink.Show(name, img); err != nil {
		log.Printf("Error showing %s: %v", name, err)
	}
}

func (l *Loop) lifecycles() []Lifecycle {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Lifecycle
	for _, o := range l.observers {
		if lc, ok := o.(Lifecycle); ok {
			out = append(out, lc)
		}
	}
	return out
}

// readError maps a frame source error to the loop's result: the end of
// the stream is a normal stop, anything else is reported.
func readError(err error) error {
	if errors.Is(err, capture.ErrSourceExhausted) {
		return nil
	}
	return fmt.Errorf("read frame: %w", err)
}
