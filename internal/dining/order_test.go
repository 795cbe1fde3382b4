package dining

import "testing"

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		want  float64
	}{
		{"empty", nil, 0},
		{"singleLine", []OrderItem{{UnitPrice: 4.5, Quantity: 2}}, 9},
		{"multipleLines", []OrderItem{
			{UnitPrice: 3, Quantity: 1},
			{UnitPrice: 2.5, Quantity: 4},
		}, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotal(tt.items); got != tt.want {
				t.Errorf("ComputeTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderIsUnpaid(t *testing.T) {
	order := NewOrder(3)
	if !order.IsUnpaid() {
		t.Error("fresh order should be unpaid")
	}

	order.Status = StatusCancelled
	if order.IsUnpaid() {
		t.Error("cancelled order should not count as unpaid")
	}

	order.Status = StatusCompleted
	order.MarkPayment(PaymentPaid)
	if order.IsUnpaid() {
		t.Error("paid order should not count as unpaid")
	}
}

func TestOrderMarkPayment(t *testing.T) {
	order := NewOrder(3)

	order.MarkPayment(PaymentPaid)
	if order.PaidAt == nil {
		t.Fatal("PaidAt should be stamped on payment")
	}

	order.MarkPayment(PaymentPending)
	if order.PaidAt != nil {
		t.Error("PaidAt should be cleared when payment reverts")
	}
}
