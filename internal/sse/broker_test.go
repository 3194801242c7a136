package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100*time.Millisecond, time.Second)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100*time.Millisecond, time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDeckReloaded, Data: map[string]int{"added": 2}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: deck.reloaded") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"added":2`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishCardEvent_StatsThrottle(t *testing.T) {
	b := NewBroker(500*time.Millisecond, time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCardEvent(TypeCardReviewed, CardEvent{ID: "a:b", Name: "a", Outcome: "Good"})
	b.PublishCardEvent(TypeCardIgnored, CardEvent{ID: "c:d", Name: "c"})

	time.Sleep(50 * time.Millisecond)
	statsCount, cardCount := 0, 0
	var first string
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if first == "" {
				first = s
			}
			if strings.Contains(s, TypeStatsUpdated) {
				statsCount++
			} else {
				cardCount++
			}
		default:
			break loop
		}
	}

	if cardCount != 2 {
		t.Errorf("card events = %d, want 2", cardCount)
	}
	if statsCount != 1 {
		t.Errorf("stats events = %d, want 1 (throttled)", statsCount)
	}
	if !strings.Contains(first, "event: card.reviewed") || !strings.Contains(first, `"outcome":"Good"`) {
		t.Errorf("first event = %q", first)
	}
}

// flushRecorder is an httptest.ResponseRecorder safe to read while the
// handler is still writing.
type flushRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

func (f *flushRecorder) Header() http.Header { return f.rec.Header() }
func (f *flushRecorder) WriteHeader(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.WriteHeader(code)
}
func (f *flushRecorder) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.Write(p)
}
func (f *flushRecorder) Flush() {}
func (f *flushRecorder) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100*time.Millisecond, 30*time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := &flushRecorder{rec: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishCardEvent(TypeCardReviewed, CardEvent{ID: "x:y", Name: "x", Outcome: "Easy"})
	time.Sleep(80 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, "event: card.reviewed") {
		t.Errorf("handler output missing event: %q", body)
	}
	if !strings.Contains(body, ": ping") {
		t.Errorf("handler output missing keep-alive: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second, time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100*time.Millisecond, time.Second)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeDeckReloaded, Data: nil})
	b.PublishCardEvent(TypeCardIgnored, CardEvent{ID: "x:y"})
}

func TestFramesCarryIncreasingIDs(t *testing.T) {
	b := NewBroker(time.Second, time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDeckReloaded, Data: nil})
	b.Publish(Event{Type: TypeDeckReloaded, Data: nil})

	for _, want := range []string{"id: 1\n", "id: 2\n"} {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(string(msg), want) {
				t.Errorf("frame = %q, want prefix %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestSubscribeFrom_Replays(t *testing.T) {
	b := NewBroker(time.Second, time.Second)
	defer b.Close()

	first := b.Subscribe()
	for i := 0; i < 3; i++ {
		b.Publish(Event{Type: TypeDeckReloaded, Data: map[string]int{"n": i}})
		select {
		case <-first:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for live frame")
		}
	}
	b.Unsubscribe(first)

	ch := b.SubscribeFrom(1)
	defer b.Unsubscribe(ch)

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case msg := <-ch:
			got = append(got, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("timeout after %d replayed frames", i)
		}
	}
	if !strings.HasPrefix(got[0], "id: 2\n") || !strings.HasPrefix(got[1], "id: 3\n") {
		t.Errorf("replayed frames = %q", got)
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra frame %q", msg)
	default:
	}
}

func TestStatsSourcePayload(t *testing.T) {
	b := NewBroker(time.Millisecond, time.Second)
	defer b.Close()
	b.SetStatsSource(func() any { return map[string]int{"due": 4} })
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCardEvent(TypeCardReviewed, CardEvent{ID: "a:b", Name: "a", Outcome: "Hard"})

	for i := 0; i < 2; i++ {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, TypeStatsUpdated) && !strings.Contains(s, `"due":4`) {
				t.Errorf("stats frame = %q", s)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}
