package stream

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/appetiteclub/apt/events"

	"github.com/quickdine/quickdine/pkg"
)

type fakeBus struct {
	mu       sync.Mutex
	handlers map[string][]events.HandlerFunc
	sent     []struct {
		topic   string
		payload []byte
	}
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string][]events.HandlerFunc)}
}

func (b *fakeBus) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

func (b *fakeBus) Publish(ctx context.Context, topic string, msg []byte) error {
	b.mu.Lock()
	b.sent = append(b.sent, struct {
		topic   string
		payload []byte
	}{topic, msg})
	handlers := append([]events.HandlerFunc(nil), b.handlers[topic]...)
	b.mu.Unlock()

	for _, h := range handlers {
		_ = h(ctx, msg)
	}
	return nil
}

func (b *fakeBus) published() []struct {
	topic   string
	payload []byte
} {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]struct {
		topic   string
		payload []byte
	}, len(b.sent))
	copy(out, b.sent)
	return out
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return data
}

func TestRelayForwardsEventsToHub(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(nil)
	relay := NewRelay(bus, bus, hub, nil)

	ctx := context.Background()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	ch := hub.Subscribe("viewer")

	payload := mustMarshal(t, pkg.TableStatusEvent{
		EventType:   pkg.EventTableStatusChanged,
		Type:        "table.activated",
		TableNumber: 3,
		OccurredAt:  time.Now(),
	})
	_ = bus.Publish(ctx, pkg.TableStatusTopic, payload)

	select {
	case msg := <-ch:
		if msg.Event != pkg.EventTableStatusChanged {
			t.Errorf("event = %q, want %q", msg.Event, pkg.EventTableStatusChanged)
		}
	default:
		t.Fatal("hub received nothing")
	}
}

func TestRelayDropsUndecodableEvents(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(nil)
	relay := NewRelay(bus, bus, hub, nil)

	ctx := context.Background()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	ch := hub.Subscribe("viewer")

	_ = bus.Publish(ctx, pkg.TableStatusTopic, []byte(`{"event_type":"bogus.event"}`))
	_ = bus.Publish(ctx, pkg.TableStatusTopic, []byte(`not json`))

	select {
	case msg := <-ch:
		t.Errorf("undecodable event reached a subscriber: %q", msg.Event)
	default:
	}
}

func TestRelayRebroadcastsCustomerRequests(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(nil)
	relay := NewRelay(bus, bus, hub, nil)

	ctx := context.Background()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	ch := hub.Subscribe("viewer")

	payload := mustMarshal(t, pkg.CustomerRequestEvent{
		EventType:   pkg.EventCustomerRequest,
		TableNumber: 8,
		RequestType: "water",
		OccurredAt:  time.Now(),
	})
	_ = bus.Publish(ctx, pkg.ServiceRequestTopic, payload)

	var sawKitchenUpdate bool
	for _, sent := range bus.published() {
		evt, err := pkg.Decode(sent.payload)
		if err != nil {
			continue
		}
		if update, ok := evt.(pkg.KitchenUpdateEvent); ok {
			sawKitchenUpdate = true
			if update.TableNumber != 8 || update.Type != "water" {
				t.Errorf("kitchen update = %+v, want table 8 / water", update)
			}
			if sent.topic != pkg.OrderLifecycleTopic {
				t.Errorf("kitchen update topic = %q, want %q", sent.topic, pkg.OrderLifecycleTopic)
			}
		}
	}
	if !sawKitchenUpdate {
		t.Fatal("customer request was not re-broadcast as a kitchen update")
	}

	// The SSE hub sees both the original request and the relayed update.
	got := map[string]bool{}
	for {
		select {
		case msg := <-ch:
			got[msg.Event] = true
			continue
		default:
		}
		break
	}
	if !got[pkg.EventCustomerRequest] || !got[pkg.EventKitchenUpdate] {
		t.Errorf("hub events = %v, want customer.request and kitchen.update", got)
	}
}
