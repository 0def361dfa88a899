package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Record is one entry of a fake metadata stream, encoded with the keys the
// live service uses.
type Record struct {
	ReplayID   string `json:"replayid"`
	IsMulti    bool   `json:"ismulti"`
	RecordedAt string `json:"ts"`
}

// MetadataServer is an httptest server answering GET /streams/{name}.
// Unknown streams answer {"success":false,"error":"..."} without data.
type MetadataServer struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	requests []string
}

// NewMetadataServer starts a fake metadata service closed at test cleanup.
func NewMetadataServer(t testing.TB) *MetadataServer {
	t.Helper()

	s := &MetadataServer{bodies: map[string]string{}, statuses: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetRecords makes stream list records.
func (s *MetadataServer) SetRecords(t testing.TB, stream string, records ...Record) {
	t.Helper()

	if records == nil {
		records = []Record{}
	}
	body, err := json.Marshal(map[string]any{
		"success": true,
		"data":    map[string]any{"records": records},
	})
	if err != nil {
		t.Fatalf("encode records: %v", err)
	}
	s.SetResponse(stream, http.StatusOK, string(body))
}

// SetResponse makes stream answer with a raw status and body.
func (s *MetadataServer) SetResponse(stream string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[stream] = body
	s.statuses[stream] = status
}

// Requests returns the stream names requested so far.
func (s *MetadataServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *MetadataServer) serve(w http.ResponseWriter, r *http.Request) {
	stream, ok := strings.CutPrefix(r.URL.Path, "/streams/")
	if r.Method != http.MethodGet || !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, stream)
	body, known := s.bodies[stream]
	status := s.statuses[stream]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !known {
		_, _ = w.Write([]byte(`{"success":false,"error":"no such stream"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ContentServer is an httptest server answering GET /replay/{id} with
// ReplayBody(id), after any scripted failure statuses for that id.
type ContentServer struct {
	*httptest.Server

	mu       sync.Mutex
	script   map[string][]int
	requests []string
	latency  time.Duration
	inFlight int
	peak     int
}

// NewContentServer starts a fake content service closed at test cleanup.
func NewContentServer(t testing.TB) *ContentServer {
	t.Helper()

	s := &ContentServer{script: map[string][]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Fail queues statuses that id answers with, one per request, before it
// succeeds.
func (s *ContentServer) Fail(id string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script[id] = append(s.script[id], statuses...)
}

// Requests returns the replay ids requested so far, in order.
func (s *ContentServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// SetLatency makes every request take at least d, so overlapping requests
// are observable through PeakInFlight.
func (s *ContentServer) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// PeakInFlight returns the highest number of requests served at once.
func (s *ContentServer) PeakInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// ReplayBody is the payload the fake content service serves for id.
func ReplayBody(id string) string {
	return "replay:" + id
}

func (s *ContentServer) serve(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutPrefix(r.URL.Path, "/replay/")
	if r.Method != http.MethodGet || !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, id)
	s.inFlight++
	s.peak = max(s.peak, s.inFlight)
	latency := s.latency
	var status int
	if queue := s.script[id]; len(queue) > 0 {
		status = queue[0]
		s.script[id] = queue[1:]
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if latency > 0 {
		time.Sleep(latency)
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write([]byte(ReplayBody(id)))
}
