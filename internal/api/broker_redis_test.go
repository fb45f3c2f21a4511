package api

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisBroker(t *testing.T) *RedisBroker {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := NewRedisBroker("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisBroker: %v", err)
	}
	return b
}

func TestRedisBrokerPublishSubscribe(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("s1")
	b.Publish("s1", SSEEvent{Type: "schedule.created", Data: map[string]any{"scheduleId": "s1"}})
	select {
	case evt := <-ch:
		if evt.Type != "schedule.created" {
			t.Fatalf("type = %q, want schedule.created", evt.Type)
		}
		if evt.Data["scheduleId"] != "s1" {
			t.Fatalf("scheduleId = %v, want s1", evt.Data["scheduleId"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	b.Unsubscribe("s1", ch)
}

func TestRedisBrokerUnsubscribeThenPublish(t *testing.T) {
	b := newTestRedisBroker(t)
	ch := b.Subscribe("s1")
	b.Unsubscribe("s1", ch)

	// The pump goroutine owns the channel close; wait for it.
	deadline := time.After(2 * time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-ch:
			closed = !ok
		case <-deadline:
			t.Fatal("channel not closed after unsubscribe")
		}
	}

	// A publish after unsubscribe must not panic.
	b.Publish("s1", SSEEvent{Type: "schedule.created"})

	// Unsubscribing twice is a no-op.
	b.Unsubscribe("s1", ch)
}
