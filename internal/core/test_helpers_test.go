package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return Event{}
}

// noEvent asserts that no event of the given kind is pending on the channel.
func noEvent(t *testing.T, ch <-chan Event, kind EventKind) {
	t.Helper()

	time.Sleep(20 * time.Millisecond)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Kind == kind {
				t.Fatalf("unexpected event of kind %v: %+v", kind, ev)
			}
		default:
			return
		}
	}
}

// drainEvents discards everything currently buffered on the channel.
func drainEvents(ch <-chan Event) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
