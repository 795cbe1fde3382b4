package pkg

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// TableStatusTopic delivers authoritative activation changes for tables.
	TableStatusTopic = "tables.status"
	// OrderLifecycleTopic groups order creation and status change events.
	OrderLifecycleTopic = "orders.lifecycle"
	// ServiceRequestTopic carries client-originated requests relayed to staff.
	ServiceRequestTopic = "service.requests"
)

const (
	// EventTableStatusChanged identifies a table activation state change.
	EventTableStatusChanged = "table.status.changed"
	// EventOrderCreated identifies a newly placed order.
	EventOrderCreated = "order.created"
	// EventOrderStatusChanged identifies an order fulfillment status change.
	EventOrderStatusChanged = "order.status.changed"
	// EventKitchenUpdate identifies an update the kitchen display should apply.
	EventKitchenUpdate = "kitchen.update"
	// EventCustomerRequest identifies an assistance request from a table.
	EventCustomerRequest = "customer.request"
	// EventPaymentAtRegister identifies a request to settle a table at the register.
	EventPaymentAtRegister = "payment.register.requested"
)

// TerminalOrderStatus reports whether a status ends an order's lifecycle.
func TerminalOrderStatus(status string) bool {
	return status == "completed" || status == "cancelled"
}

// TableSnapshot is the denormalized table state carried inside events so
// subscribers can apply point updates without a fetch.
type TableSnapshot struct {
	ID                string     `json:"id"`
	Number            int        `json:"number"`
	IsActive          bool       `json:"is_active"`
	LastActivatedAt   *time.Time `json:"last_activated_at,omitempty"`
	LastDeactivatedAt *time.Time `json:"last_deactivated_at,omitempty"`
}

// OrderLine mirrors a single order line item for event payloads.
type OrderLine struct {
	MenuItemID      string            `json:"menu_item_id"`
	Name            string            `json:"name,omitempty"`
	UnitPrice       float64           `json:"unit_price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// OrderSnapshot is the denormalized order state carried inside events.
type OrderSnapshot struct {
	ID            string      `json:"id"`
	TableNumber   int         `json:"table_number"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	Items         []OrderLine `json:"items,omitempty"`
	TotalAmount   float64     `json:"total_amount"`
	CreatedAt     time.Time   `json:"created_at"`
}

// TableStatusEvent captures a table activation state change.
type TableStatusEvent struct {
	EventType   string         `json:"event_type"`
	Type        string         `json:"type"`
	TableNumber int            `json:"table_number"`
	Table       *TableSnapshot `json:"table,omitempty"`
	Source      string         `json:"source,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

func (e TableStatusEvent) Validate() error {
	if e.TableNumber <= 0 {
		return fmt.Errorf("table status event requires a positive table number")
	}
	if e.Type == "" {
		return fmt.Errorf("table status event requires a type")
	}
	return nil
}

// OrderCreatedEvent announces a newly placed order.
type OrderCreatedEvent struct {
	EventType  string        `json:"event_type"`
	Order      OrderSnapshot `json:"order"`
	Source     string        `json:"source,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (e OrderCreatedEvent) Validate() error {
	if e.Order.ID == "" {
		return fmt.Errorf("order created event requires an order id")
	}
	if e.Order.TableNumber <= 0 {
		return fmt.Errorf("order created event requires a positive table number")
	}
	return nil
}

// OrderStatusEvent announces a fulfillment status change for one order.
type OrderStatusEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e OrderStatusEvent) Validate() error {
	if e.OrderID == "" {
		return fmt.Errorf("order status event requires an order id")
	}
	if e.Status == "" {
		return fmt.Errorf("order status event requires a status")
	}
	return nil
}

// KitchenUpdateEvent is the relayed form of an order event for kitchen displays.
type KitchenUpdateEvent struct {
	EventType   string         `json:"event_type"`
	Type        string         `json:"type"`
	TableNumber int            `json:"table_number,omitempty"`
	Order       *OrderSnapshot `json:"order,omitempty"`
	Source      string         `json:"source,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

func (e KitchenUpdateEvent) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("kitchen update event requires a type")
	}
	return nil
}

// CustomerRequestEvent is an assistance request raised from a table.
type CustomerRequestEvent struct {
	EventType   string    `json:"event_type"`
	TableNumber int       `json:"table_number"`
	RequestType string    `json:"request_type"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e CustomerRequestEvent) Validate() error {
	if e.TableNumber <= 0 {
		return fmt.Errorf("customer request requires a positive table number")
	}
	if e.RequestType == "" {
		return fmt.Errorf("customer request requires a request type")
	}
	return nil
}

// PaymentAtRegisterEvent asks staff to settle a table at the register.
type PaymentAtRegisterEvent struct {
	EventType   string    `json:"event_type"`
	TableNumber int       `json:"table_number"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e PaymentAtRegisterEvent) Validate() error {
	if e.TableNumber <= 0 {
		return fmt.Errorf("payment at register requires a positive table number")
	}
	return nil
}

// Decode parses an event payload into its typed form based on the event_type
// tag. Unknown types and payloads missing required fields are rejected, so
// subscribers only ever see the closed set above.
func Decode(msg []byte) (interface{}, error) {
	var head struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return nil, fmt.Errorf("cannot decode event envelope: %w", err)
	}

	var evt interface{ Validate() error }
	switch head.EventType {
	case EventTableStatusChanged:
		evt = &TableStatusEvent{}
	case EventOrderCreated:
		evt = &OrderCreatedEvent{}
	case EventOrderStatusChanged:
		evt = &OrderStatusEvent{}
	case EventKitchenUpdate:
		evt = &KitchenUpdateEvent{}
	case EventCustomerRequest:
		evt = &CustomerRequestEvent{}
	case EventPaymentAtRegister:
		evt = &PaymentAtRegisterEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", head.EventType)
	}

	if err := json.Unmarshal(msg, evt); err != nil {
		return nil, fmt.Errorf("cannot decode %s event: %w", head.EventType, err)
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return deref(evt), nil
}

// TopicFor returns the topic an event type is published on.
func TopicFor(eventType string) (string, error) {
	switch eventType {
	case EventTableStatusChanged:
		return TableStatusTopic, nil
	case EventOrderCreated, EventOrderStatusChanged, EventKitchenUpdate:
		return OrderLifecycleTopic, nil
	case EventCustomerRequest, EventPaymentAtRegister:
		return ServiceRequestTopic, nil
	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
}

func deref(v interface{}) interface{} {
	switch e := v.(type) {
	case *TableStatusEvent:
		return *e
	case *OrderCreatedEvent:
		return *e
	case *OrderStatusEvent:
		return *e
	case *KitchenUpdateEvent:
		return *e
	case *CustomerRequestEvent:
		return *e
	case *PaymentAtRegisterEvent:
		return *e
	default:
		return v
	}
}
