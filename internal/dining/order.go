package dining

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentCancelled = "cancelled"
)

// Order is one submitted cart for a table session. TableNumber is a
// denormalized integer, not a reference to a Table document: the association
// is by value and survives table re-creation. Orders are never deleted; they
// double as sales history.
type Order struct {
	ID              uuid.UUID   `json:"id" bson:"_id"`
	TableNumber     int         `json:"table_number" bson:"table_number"`
	Items           []OrderItem `json:"items" bson:"items"`
	Status          string      `json:"status" bson:"status"`
	PaymentStatus   string      `json:"payment_status" bson:"payment_status"`
	SpecialRequests []string    `json:"special_requests,omitempty" bson:"special_requests,omitempty"`
	TotalAmount     float64     `json:"total_amount" bson:"total_amount"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
	PaidAt          *time.Time  `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// OrderItem is a single cart line. Name and UnitPrice are captured from the
// menu at order time so later menu edits do not rewrite sales history.
type OrderItem struct {
	MenuItemID      string            `json:"menu_item_id" bson:"menu_item_id"`
	Name            string            `json:"name,omitempty" bson:"name,omitempty"`
	UnitPrice       float64           `json:"unit_price" bson:"unit_price"`
	Quantity        int               `json:"quantity" bson:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty" bson:"selected_options,omitempty"`
	Notes           string            `json:"notes,omitempty" bson:"notes,omitempty"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func NewOrder(tableNumber int) *Order {
	return &Order{
		ID:            apt.GenerateNewID(),
		TableNumber:   tableNumber,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Items:         []OrderItem{},
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = apt.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// IsTerminal reports whether the order left the active fulfillment pipeline.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// IsUnpaid reports whether the order still blocks its table: payment pending
// and fulfillment not terminal.
func (o *Order) IsUnpaid() bool {
	return o.PaymentStatus == PaymentPending && !o.IsTerminal()
}

// MarkPayment sets the payment status and stamps PaidAt on the transition to
// paid. No event accompanies payment changes; watchers reconcile instead.
func (o *Order) MarkPayment(status string) {
	o.PaymentStatus = status
	if status == PaymentPaid {
		now := time.Now()
		o.PaidAt = &now
	} else {
		o.PaidAt = nil
	}
	o.UpdatedAt = time.Now()
}

func (o *Order) AddSpecialRequest(text string) {
	o.SpecialRequests = append(o.SpecialRequests, text)
	o.UpdatedAt = time.Now()
}

// ComputeTotal returns the total a well-behaved client should submit:
// the sum of unit price times quantity over all lines.
func ComputeTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentPaid, PaymentCancelled:
		return true
	}
	return false
}
