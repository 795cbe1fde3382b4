package dining

import (
	"context"

	"github.com/google/uuid"
)

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, number int) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByTable(ctx context.Context, tableNumber int) ([]*Order, error)
	ListByStatus(ctx context.Context, status string) ([]*Order, error)
	// FindUnpaidByTable returns the orders for the table with payment still
	// pending and fulfillment not terminal.
	FindUnpaidByTable(ctx context.Context, tableNumber int) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
}

type FloorPlanRepo interface {
	Create(ctx context.Context, plan *FloorPlan) error
	Get(ctx context.Context, id uuid.UUID) (*FloorPlan, error)
	GetDefault(ctx context.Context) (*FloorPlan, error)
	List(ctx context.Context) ([]*FloorPlan, error)
	Save(ctx context.Context, plan *FloorPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearDefaultExcept unsets the default flag on every plan except the
	// given one, keeping the at-most-one-default invariant.
	ClearDefaultExcept(ctx context.Context, id uuid.UUID) error
}
