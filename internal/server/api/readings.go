package api

import (
	"errors"
	"image"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/fingercount/internal/store"
)

// MaxReadingsPage caps the number of readings returned per request.
const MaxReadingsPage = 1000

// ReadingsHandler handles HTTP requests for the readings of a session.
type ReadingsHandler struct {
	store *store.Store
}

// NewReadingsHandler creates a new ReadingsHandler with the given store.
func NewReadingsHandler(s *store.Store) *ReadingsHandler {
	return &ReadingsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/sessions/{id}/readings?since=N&limit=N
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[0] == "" || parts[1] != "readings" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.list(w, r, parts[0])
}

// Response types

type readingResponse struct {
	Seq          int64         `json:"seq"`
	Count        int           `json:"count"`
	ContourArea  float64       `json:"contour_area"`
	HullVertices int           `json:"hull_vertices"`
	Defects      int           `json:"defects"`
	Valleys      []image.Point `json:"valleys"`
	CapturedAt   string        `json:"captured_at"`
}

type listReadingsResponse struct {
	SessionID string            `json:"session_id"`
	Readings  []readingResponse `json:"readings"`
	Next      int64             `json:"next,omitempty"`
}

// list handles GET /api/sessions/{id}/readings
func (h *ReadingsHandler) list(w http.ResponseWriter, r *http.Request, sessionID string) {
	since, err := queryInt(r, "since", 0)
	if err != nil || since < 0 {
		writeError(w, http.StatusBadRequest, "Invalid since")
		return
	}
	limit, err := queryInt(r, "limit", MaxReadingsPage)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	limit = min(limit, MaxReadingsPage)

	if _, err := h.store.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	readings, err := h.store.Readings().ListBySession(sessionID, since, int(limit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list readings")
		return
	}

	response := listReadingsResponse{
		SessionID: sessionID,
		Readings:  make([]readingResponse, 0, len(readings)),
	}

	for _, rd := range readings {
		response.Readings = append(response.Readings, readingResponse{
			Seq:          rd.Seq,
			Count:        rd.Count,
			ContourArea:  rd.ContourArea,
			HullVertices: rd.HullVertices,
			Defects:      rd.Defects,
			Valleys:      rd.Valleys,
			CapturedAt:   rd.CapturedAt.Format(time.RFC3339Nano),
		})
	}

	if int64(len(readings)) == limit {
		response.Next = readings[len(readings)-1].Seq
	}

	writeJSON(w, http.StatusOK, response)
}

func queryInt(r *http.Request, key string, def int64) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
