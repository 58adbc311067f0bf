package display

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Key codes that stop the loop.
const (
	KeyQuit   = 'q'
	KeyEscape = 27
)

// window is the part of gocv.Window the sink uses.
type window interface {
	IMShow(img gocv.Mat) error
	WaitKey(delay int) int
	Close() error
}

// Windows shows each surface in its own OpenCV window, created on first use.
type Windows struct {
	mu      sync.Mutex
	open    func(name string) window
	windows map[string]window
	order   []string
}

// NewWindows creates an empty window set.
func NewWindows() *Windows {
	return newWindows(func(name string) window {
		return gocv.NewWindow(name)
	})
}

func newWindows(open func(name string) window) *Windows {
	return &Windows{
		open:    open,
		windows: make(map[string]window),
	}
}

// Show displays img in the window called name.
func (w *Windows) Show(name string, img gocv.Mat) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	win, ok := w.windows[name]
	if !ok {
		win = w.open(name)
		w.windows[name] = win
		w.order = append(w.order, name)
	}

	if err := win.IMShow(img); err != nil {
		return fmt.Errorf("show %s: %w", name, err)
	}
	return nil
}

// PollQuit pumps the GUI event loop for a millisecond and reports whether
// q or ESC was pressed.
func (w *Windows) PollQuit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) == 0 {
		return false
	}
	return IsQuitKey(w.windows[w.order[0]].WaitKey(1))
}

// Close destroys every window and returns the joined close errors.
func (w *Windows) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, name := range w.order {
		if err := w.windows[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close window %s: %w", name, err))
		}
	}
	w.windows = make(map[string]window)
	w.order = nil
	return errors.Join(errs...)
}

// IsQuitKey reports whether a WaitKey result means stop.
func IsQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	key &= 0xFF
	return key == KeyQuit || key == KeyEscape
}
