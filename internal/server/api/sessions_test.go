package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/fingercount/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// seedSession creates an ended session with one reading per count.
func seedSession(t *testing.T, s *store.Store, id string, counts ...int) {
	t.Helper()

	if err := s.Sessions().Create(&store.Session{ID: id, Source: "0", ROI: "100,100,400,400"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	var readings []store.Reading
	for i, c := range counts {
		readings = append(readings, store.Reading{
			SessionID:  id,
			Seq:        int64(i + 1),
			Count:      c,
			CapturedAt: time.Now(),
		})
	}
	if err := s.Readings().Create(readings); err != nil {
		t.Fatalf("failed to create readings: %v", err)
	}

	if err := s.Sessions().End(id, int64(len(counts)), time.Now()); err != nil {
		t.Fatalf("failed to end session: %v", err)
	}
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", 4, 4, 3)
	handler := NewSessionHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(response.Sessions))
	}

	got := response.Sessions[0]
	if got.ID != "session-1" {
		t.Errorf("ID = %q, want %q", got.ID, "session-1")
	}
	if got.Frames != 3 {
		t.Errorf("Frames = %d, want 3", got.Frames)
	}
	if got.Active {
		t.Error("ended session should not be active")
	}
	if got.EndedAt == "" {
		t.Error("expected ended_at to be set")
	}
}

func TestSessionHandler_ListEmpty(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	// An empty list is encoded as [] rather than null.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw["sessions"]) != "[]" {
		t.Errorf("sessions = %s, want []", raw["sessions"])
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", 4, 4, 3, 0)
	handler := NewSessionHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/session-1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := map[int]int{0: 1, 3: 1, 4: 2}
	for count, frames := range want {
		if response.Counts[count] != frames {
			t.Errorf("counts[%d] = %d, want %d", count, response.Counts[count], frames)
		}
	}
}

func TestSessionHandler_GetNotFound(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", 2)
	handler := NewSessionHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/session-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/sessions/session-1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodPost, path: "/api/sessions"},
		{method: http.MethodDelete, path: "/api/sessions"},
		{method: http.MethodPut, path: "/api/sessions/session-1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
			}
		})
	}
}

func TestReadingsHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", 1, 2, 3, 4, 5)
	handler := NewReadingsHandler(s)

	tests := []struct {
		name     string
		query    string
		wantSeqs []int64
		wantNext int64
	}{
		{name: "all", query: "", wantSeqs: []int64{1, 2, 3, 4, 5}},
		{name: "first page", query: "?limit=2", wantSeqs: []int64{1, 2}, wantNext: 2},
		{name: "second page", query: "?since=2&limit=2", wantSeqs: []int64{3, 4}, wantNext: 4},
		{name: "last page", query: "?since=4&limit=2", wantSeqs: []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sessions/session-1/readings"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}

			var response listReadingsResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if len(response.Readings) != len(tt.wantSeqs) {
				t.Fatalf("got %d readings, want %d", len(response.Readings), len(tt.wantSeqs))
			}
			for i, rd := range response.Readings {
				if rd.Seq != tt.wantSeqs[i] {
					t.Errorf("readings[%d].Seq = %d, want %d", i, rd.Seq, tt.wantSeqs[i])
				}
				if rd.Count != int(rd.Seq) {
					t.Errorf("readings[%d].Count = %d, want %d", i, rd.Count, rd.Seq)
				}
			}
			if response.Next != tt.wantNext {
				t.Errorf("Next = %d, want %d", response.Next, tt.wantNext)
			}
		})
	}
}

func TestReadingsHandler_Errors(t *testing.T) {
	s := newTestStore(t)
	seedSession(t, s, "session-1", 1)
	handler := NewReadingsHandler(s)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "unknown session", method: http.MethodGet, path: "/api/sessions/missing/readings", wantStatus: http.StatusNotFound},
		{name: "bad limit", method: http.MethodGet, path: "/api/sessions/session-1/readings?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "zero limit", method: http.MethodGet, path: "/api/sessions/session-1/readings?limit=0", wantStatus: http.StatusBadRequest},
		{name: "negative since", method: http.MethodGet, path: "/api/sessions/session-1/readings?since=-1", wantStatus: http.StatusBadRequest},
		{name: "wrong sub-resource", method: http.MethodGet, path: "/api/sessions/session-1/frames", wantStatus: http.StatusNotFound},
		{name: "post", method: http.MethodPost, path: "/api/sessions/session-1/readings", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
