package server

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/ayusman/fingercount/internal/display"
)

// streamPollInterval is how often a stream checks for a new frame.
const streamPollInterval = 15 * time.Millisecond

// StreamHandler serves MJPEG frames published to a FrameSink.
type StreamHandler struct {
	frames *FrameSink
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *FrameSink) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames of the surface named by the "surface"
// query parameter (Frame by default) to the client.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	surface := r.URL.Query().Get("surface")
	if surface == "" {
		surface = display.SurfaceFrame
	}
	if !slices.Contains(display.Surfaces, surface) {
		http.Error(w, "Unknown surface", http.StatusNotFound)
		return
	}

	release := h.frames.Watch(surface)
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		data, seq, ok := h.frames.Latest(surface)
		if !ok || seq == last {
			continue
		}
		last = seq

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
