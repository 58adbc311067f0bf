// Package display routes the images produced for each frame to whatever
// shows them: OpenCV windows on the desktop or the HTTP stream.
package display

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// Surface names, also used as window titles and stream names.
const (
	SurfaceFrame = "Frame"
	SurfaceROI   = "ROI"
	SurfaceMask  = "Mask"
)

// Surfaces lists every surface the frame loop can publish.
var Surfaces = []string{SurfaceFrame, SurfaceROI, SurfaceMask}

// Sink receives the images of every frame. Show must not keep a reference
// to img after it returns; the frame loop closes it right after.
type Sink interface {
	Show(name string, img gocv.Mat) error
	// PollQuit reports whether the user asked to stop.
	PollQuit() bool
}

// Multi fans images out to several sinks.
type Multi []Sink

// Show forwards img to every sink and joins their errors.
func (m Multi) Show(name string, img gocv.Mat) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(name, img); err != nil {
			errs = append(errs, fmt.Errorf("show %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// PollQuit polls every sink, so each one gets to process its events, and
// reports whether any of them asked to stop.
func (m Multi) PollQuit() bool {
	quit := false
	for _, s := range m {
		if s.PollQuit() {
			quit = true
		}
	}
	return quit
}

// Discard is a Sink that shows nothing and never quits.
type Discard struct{}

func (Discard) Show(string, gocv.Mat) error { return nil }
func (Discard) PollQuit() bool              { return false }
