package sse

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
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

func TestPublishCookieEventDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCookieEvent("incremented", 42, 7)

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: cookies.incremented") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"cookies":7`) || !strings.Contains(s, `"userId":42`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestLeaderboardThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First mutation should trigger leaderboard.updated.
	b.PublishCookieEvent("replaced", 1, 5)
	// Second mutation immediately after should NOT trigger another one.
	b.PublishCookieEvent("incremented", 2, 3)

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	boardCount := 0
	cookieCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "leaderboard.updated") {
				boardCount++
			} else {
				cookieCount++
			}
		default:
			break loop
		}
	}

	if cookieCount != 2 {
		t.Errorf("cookie events = %d, want 2", cookieCount)
	}
	if boardCount != 1 {
		t.Errorf("leaderboard events = %d, want 1 (throttled)", boardCount)
	}
}

func TestPublishAfterClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	b.Close()

	// Must not panic or block.
	b.PublishCookieEvent("replaced", 1, 1)
	b.Publish(Event{Type: "x"})
	if b.ClientCount() != 0 {
		t.Error("expected 0 clients after close")
	}
	ch := b.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}

func TestSSEHandlerHeaders(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.ServeHTTP(w, req)
	}()

	// Give the handler time to write headers, then shut down the broker to
	// release the client.
	time.Sleep(50 * time.Millisecond)
	b.Close()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}
