// Package tray provides a system tray indicator showing the live finger count.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/fingercount/internal/vision"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onQuit func()
	count  int
	frames int64
	ready  bool
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuFrames *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{count: -1}
}

// Title formats the tray title for a finger count.
func Title(count int) string {
	if count < 0 {
		return "Fingers: -"
	}
	return fmt.Sprintf("Fingers: %d", count)
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// Observe shows the reading's count in the tray title. The title is only
// touched when the count changes.
func (t *Tray) Observe(r vision.Reading) {
	t.mu.Lock()
	changed := r.Count != t.count
	t.count = r.Count
	t.frames = r.Seq
	ready := t.ready
	t.mu.Unlock()

	if !ready {
		return
	}
	if changed {
		systray.SetTitle(Title(r.Count))
	}
	if r.Seq%30 == 0 {
		t.menuFrames.SetTitle(fmt.Sprintf("Frames: %d", r.Seq))
	}
}

// Count returns the last observed count, or -1 before the first frame.
func (t *Tray) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	t.mu.Lock()
	systray.SetTitle(Title(t.count))
	systray.SetTooltip("Raised fingers in the region of interest")

	t.menuFrames = systray.AddMenuItem(fmt.Sprintf("Frames: %d", t.frames), "Frames analysed")
	t.menuFrames.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop counting and quit")
	t.ready = true
	t.mu.Unlock()

	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ready = false
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}
