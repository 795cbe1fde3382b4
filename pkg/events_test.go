package pkg

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodeKnownEvents(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		evt  interface{}
	}{
		{
			name: "tableStatus",
			evt: TableStatusEvent{
				EventType:   EventTableStatusChanged,
				Type:        "table.activated",
				TableNumber: 4,
				OccurredAt:  now,
			},
		},
		{
			name: "orderCreated",
			evt: OrderCreatedEvent{
				EventType:  EventOrderCreated,
				Order:      OrderSnapshot{ID: "o1", TableNumber: 2, Status: "pending"},
				OccurredAt: now,
			},
		},
		{
			name: "orderStatus",
			evt: OrderStatusEvent{
				EventType:  EventOrderStatusChanged,
				OrderID:    "o1",
				Status:     "in-progress",
				OccurredAt: now,
			},
		},
		{
			name: "kitchenUpdate",
			evt: KitchenUpdateEvent{
				EventType:  EventKitchenUpdate,
				Type:       "order-update",
				OccurredAt: now,
			},
		},
		{
			name: "customerRequest",
			evt: CustomerRequestEvent{
				EventType:   EventCustomerRequest,
				TableNumber: 7,
				RequestType: "water",
				OccurredAt:  now,
			},
		},
		{
			name: "paymentAtRegister",
			evt: PaymentAtRegisterEvent{
				EventType:   EventPaymentAtRegister,
				TableNumber: 7,
				OccurredAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.evt)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			decoded, err := Decode(payload)
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if decoded == nil {
				t.Fatal("Decode() returned nil event")
			}
		})
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "notJSON", payload: `garbage`},
		{name: "unknownType", payload: `{"event_type":"table.exploded"}`},
		{name: "missingType", payload: `{"table_number":1}`},
		{name: "tableStatusWithoutNumber", payload: `{"event_type":"table.status.changed","type":"table.activated"}`},
		{name: "tableStatusWithoutChangeType", payload: `{"event_type":"table.status.changed","table_number":3}`},
		{name: "orderCreatedWithoutID", payload: `{"event_type":"order.created","order":{"table_number":2}}`},
		{name: "orderStatusWithoutStatus", payload: `{"event_type":"order.status.changed","order_id":"o1"}`},
		{name: "customerRequestWithoutType", payload: `{"event_type":"customer.request","table_number":4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.payload)); err == nil {
				t.Error("Decode() should reject the payload")
			}
		})
	}
}

func TestDecodeReturnsValueTypes(t *testing.T) {
	payload := []byte(`{"event_type":"order.status.changed","order_id":"o1","status":"completed"}`)

	decoded, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}

	evt, ok := decoded.(OrderStatusEvent)
	if !ok {
		t.Fatalf("decoded type = %T, want OrderStatusEvent value", decoded)
	}
	if evt.OrderID != "o1" || evt.Status != "completed" {
		t.Errorf("decoded event = %+v", evt)
	}
}

func TestTopicFor(t *testing.T) {
	tests := []struct {
		eventType string
		topic     string
	}{
		{EventTableStatusChanged, TableStatusTopic},
		{EventOrderCreated, OrderLifecycleTopic},
		{EventOrderStatusChanged, OrderLifecycleTopic},
		{EventKitchenUpdate, OrderLifecycleTopic},
		{EventCustomerRequest, ServiceRequestTopic},
		{EventPaymentAtRegister, ServiceRequestTopic},
	}

	for _, tt := range tests {
		topic, err := TopicFor(tt.eventType)
		if err != nil {
			t.Errorf("TopicFor(%q) unexpected error: %v", tt.eventType, err)
		}
		if topic != tt.topic {
			t.Errorf("TopicFor(%q) = %q, want %q", tt.eventType, topic, tt.topic)
		}
	}

	if _, err := TopicFor("table.exploded"); err == nil {
		t.Error("TopicFor() should reject unknown event types")
	}
}

func TestTerminalOrderStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"completed":   true,
		"cancelled":   true,
		"pending":     false,
		"in-progress": false,
		"":            false,
	} {
		if got := TerminalOrderStatus(status); got != want {
			t.Errorf("TerminalOrderStatus(%q) = %v, want %v", status, got, want)
		}
	}
}
