package export

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/intelfuse-ai/intelfuse/internal/aggregate"
)

func sampleEvent() *Event {
	agg := aggregate.Aggregate{
		Incidents:     2,
		AvgSeverity:   "4.50",
		AvgConfidence: 0.875,
		TopActor:      "Silent Lynx",
		TopIndustry:   "Healthcare",
	}
	return NewEvent(agg, []string{"Analyzed 2 incidents across distinct intelligence sources."}, nil, 12.5)
}

func TestNewEventFields(t *testing.T) {
	ev := sampleEvent()
	if ev.Version != "1" {
		t.Fatalf("version = %q, want %q", ev.Version, "1")
	}
	if ev.BriefingID == "" {
		t.Fatal("briefing id is empty")
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("timestamp is zero")
	}
	if ev.Incidents != 2 {
		t.Fatalf("incidents = %d, want 2", ev.Incidents)
	}
}

func TestFileSinkAppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "briefings.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := sink.Deliver(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("first deliver: %v", err)
	}
	if err := sink.Deliver(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("second deliver: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if ev.Incidents != 2 {
			t.Fatalf("line %d incidents = %d, want 2", lines, ev.Incidents)
		}
	}
	if lines != 2 {
		t.Fatalf("got %d lines, want 2", lines)
	}
}

func TestWebhookSinkDelivers(t *testing.T) {
	var mu sync.Mutex
	var got []*Event
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		got = append(got, &ev)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(srv.URL, map[string]string{"Authorization": "Bearer test"}, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookSink: %v", err)
	}
	if err := sink.Deliver(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("server received %d events, want 1", len(got))
	}
	if auth != "Bearer test" {
		t.Fatalf("authorization header = %q", auth)
	}
}

func TestWebhookSinkRetriesThenFails(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(srv.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookSink: %v", err)
	}
	if err := sink.Deliver(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected error for persistent 502")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []*Event
	fail   bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if s.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (s *recordingSink) Close(context.Context) error { return nil }

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestEmitterDeliversToSinks(t *testing.T) {
	sink := &recordingSink{}
	em := NewEmitter(10, 2, []Sink{sink})

	for i := 0; i < 5; i++ {
		em.Emit(sampleEvent())
	}
	em.Close(context.Background())

	if got := sink.count(); got != 5 {
		t.Fatalf("sink received %d events, want 5", got)
	}
	m := em.MetricsSnapshot()
	if m.Enqueued() != 5 {
		t.Fatalf("enqueued = %d, want 5", m.Enqueued())
	}
	if m.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", m.Dropped())
	}
	if m.SinkSuccess("recording") != 5 {
		t.Fatalf("sink success = %d, want 5", m.SinkSuccess("recording"))
	}
}

func TestEmitterCountsFailures(t *testing.T) {
	sink := &recordingSink{fail: true}
	em := NewEmitter(10, 1, []Sink{sink})

	em.Emit(sampleEvent())
	em.Close(context.Background())

	m := em.MetricsSnapshot()
	if m.SinkFailure("recording") != 1 {
		t.Fatalf("sink failure = %d, want 1", m.SinkFailure("recording"))
	}
}

func TestEmitterIgnoresAfterClose(t *testing.T) {
	sink := &recordingSink{}
	em := NewEmitter(10, 1, []Sink{sink})
	em.Close(context.Background())

	em.Emit(sampleEvent())

	m := em.MetricsSnapshot()
	if m.Enqueued() != 0 {
		t.Fatalf("enqueued after close = %d, want 0", m.Enqueued())
	}
}
