package tray

import (
	"testing"

	"github.com/ayusman/fingercount/internal/vision"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{count: -1, want: "Fingers: -"},
		{count: 0, want: "Fingers: 0"},
		{count: 4, want: "Fingers: 4"},
	}

	for _, tt := range tests {
		if got := Title(tt.count); got != tt.want {
			t.Errorf("Title(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestTray_ObserveBeforeReady(t *testing.T) {
	tr := New()

	if got := tr.Count(); got != -1 {
		t.Errorf("Count() before any reading = %d, want -1", got)
	}

	// Must not touch systray before Run has set it up.
	tr.Observe(vision.Reading{Seq: 1, Count: 3})
	tr.Observe(vision.Reading{Seq: 2, Count: 2})

	if got := tr.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}
