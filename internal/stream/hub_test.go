package stream

import (
	"testing"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)

	chA := hub.Subscribe("a")
	chB := hub.Subscribe("b")

	hub.Broadcast(Message{Event: "table.status.changed", Data: []byte(`{}`)})

	for name, ch := range map[string]<-chan Message{"a": chA, "b": chB} {
		select {
		case msg := <-ch:
			if msg.Event != "table.status.changed" {
				t.Errorf("subscriber %s got event %q", name, msg.Event)
			}
		default:
			t.Errorf("subscriber %s received nothing", name)
		}
	}

	// A subscriber joining after the broadcast sees nothing historical.
	late := hub.Subscribe("late")
	select {
	case msg := <-late:
		t.Errorf("late subscriber received %q, want no replay", msg.Event)
	default:
	}
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub(nil)

	ch := hub.Subscribe("slow")

	// Fill the buffer and push one more; the overflow is dropped, the
	// broadcast does not block.
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Broadcast(Message{Event: "order.created", Data: []byte(`{}`)})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}

	if received != subscriberBuffer {
		t.Errorf("received %d events, want %d", received, subscriberBuffer)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)

	ch := hub.Subscribe("x")
	hub.Unsubscribe("x")

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	// Broadcast after unsubscribe must not panic.
	hub.Broadcast(Message{Event: "order.created", Data: []byte(`{}`)})
}

func TestHubClose(t *testing.T) {
	hub := NewHub(nil)

	ch := hub.Subscribe("x")
	hub.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after hub close")
	}

	late := hub.Subscribe("late")
	if _, ok := <-late; ok {
		t.Error("subscribing to a closed hub should yield a closed channel")
	}
}
