package dining

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/quickdine/quickdine/pkg"
)

const eventSource = "dining-service"

// TransitionValidator decides whether an order may move between two
// fulfillment statuses. The default accepts every pair of valid statuses,
// including the completed to in-progress revert; a stricter state machine can
// be layered in without touching call sites.
type TransitionValidator func(from, to string) error

// Coordinator is the sole authority for table activation state and order
// status transitions. Every command is an independent read-validate-write
// sequence against the store; there is no cross-request locking, so two
// racing commands on the same entity can both pass their checks. Events are
// emitted after a successful persist, best effort.
type Coordinator struct {
	tableRepo          TableRepo
	orderRepo          OrderRepo
	publisher          events.Publisher
	logger             apt.Logger
	lazyCreate         bool
	validateTransition TransitionValidator
}

func NewCoordinator(tableRepo TableRepo, orderRepo OrderRepo, publisher events.Publisher, logger apt.Logger) *Coordinator {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Coordinator{
		tableRepo:  tableRepo,
		orderRepo:  orderRepo,
		publisher:  publisher,
		logger:     logger,
		lazyCreate: true,
		validateTransition: func(from, to string) error {
			return nil
		},
	}
}

// SetLazyCreate toggles creating a table record on first reference. When
// disabled, activating an unknown table number fails with ErrTableNotFound.
func (c *Coordinator) SetLazyCreate(enabled bool) {
	c.lazyCreate = enabled
}

func (c *Coordinator) SetTransitionValidator(v TransitionValidator) {
	if v != nil {
		c.validateTransition = v
	}
}

// ActivateTable marks a table as seated. The table record is created lazily
// when missing. Activation is refused while any order for the number has
// payment pending and is not terminal.
func (c *Coordinator) ActivateTable(ctx context.Context, number int) (*Table, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}

	table, err := c.tableRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("cannot load table %d: %w", number, err)
	}

	if table == nil {
		table, err = c.materializeTable(ctx, number)
		if err != nil {
			return nil, err
		}
	}

	if table.IsActive {
		return nil, ErrTableAlreadyActive
	}

	if err := c.ensureNoDebt(ctx, number); err != nil {
		return nil, err
	}

	table.Activate()
	if err := c.tableRepo.Save(ctx, table); err != nil {
		return nil, fmt.Errorf("cannot save table %d: %w", number, err)
	}

	// Lazily materialized tables announce the activation, not the creation;
	// subscribers key on the change type.
	c.publishTableStatus(ctx, table, "table.activated")
	return table, nil
}

// DeactivateTable marks a table idle under the same unpaid-order predicate
// as activation. Unknown tables are not created here.
func (c *Coordinator) DeactivateTable(ctx context.Context, number int) (*Table, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}

	table, err := c.tableRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("cannot load table %d: %w", number, err)
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	if !table.IsActive {
		return nil, ErrTableAlreadyInactive
	}

	if err := c.ensureNoDebt(ctx, number); err != nil {
		return nil, err
	}

	table.Deactivate()
	if err := c.tableRepo.Save(ctx, table); err != nil {
		return nil, fmt.Errorf("cannot save table %d: %w", number, err)
	}

	c.publishTableStatus(ctx, table, "table.deactivated")
	return table, nil
}

// TableStatus returns the table for a number, lazily creating an inactive
// record when permitted. Any positive integer is a valid table number.
func (c *Coordinator) TableStatus(ctx context.Context, number int) (*Table, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}

	table, err := c.tableRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("cannot load table %d: %w", number, err)
	}
	if table != nil {
		return table, nil
	}

	return c.materializeTable(ctx, number)
}

// CreateTable provisions a table explicitly. Duplicate numbers are refused.
func (c *Coordinator) CreateTable(ctx context.Context, number int, shape string, pos Position) (*Table, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}

	existing, err := c.tableRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("cannot load table %d: %w", number, err)
	}
	if existing != nil {
		return nil, ErrDuplicateTableNumber
	}

	table := NewTable(number)
	if shape != "" {
		table.Shape = shape
	}
	table.Position = pos
	table.BeforeCreate()

	if err := c.tableRepo.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("cannot create table %d: %w", number, err)
	}

	c.publishTableStatus(ctx, table, "table.created")
	return table, nil
}

// UpdateTablePosition moves a table on the floor-plan canvas.
func (c *Coordinator) UpdateTablePosition(ctx context.Context, id uuid.UUID, x, y float64) (*Table, error) {
	table, err := c.tableRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load table: %w", err)
	}
	if table == nil {
		return nil, ErrTableNotFound
	}

	table.MoveTo(x, y)
	if err := c.tableRepo.Save(ctx, table); err != nil {
		return nil, fmt.Errorf("cannot save table %d: %w", table.Number, err)
	}
	return table, nil
}

// UpdateTableShape changes the table's shape tag.
func (c *Coordinator) UpdateTableShape(ctx context.Context, id uuid.UUID, shape string) (*Table, error) {
	if !ValidShape(shape) {
		return nil, fmt.Errorf("unknown table shape %q", shape)
	}

	table, err := c.tableRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load table: %w", err)
	}
	if table == nil {
		return nil, ErrTableNotFound
	}

	table.Shape = shape
	table.BeforeUpdate()
	if err := c.tableRepo.Save(ctx, table); err != nil {
		return nil, fmt.Errorf("cannot save table %d: %w", table.Number, err)
	}
	return table, nil
}

// DeleteTable removes a table record. Refused while a non-terminal order
// exists for the table number; paid history orders never block deletion.
func (c *Coordinator) DeleteTable(ctx context.Context, id uuid.UUID) error {
	table, err := c.tableRepo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("cannot load table: %w", err)
	}
	if table == nil {
		return ErrTableNotFound
	}

	orders, err := c.orderRepo.ListByTable(ctx, table.Number)
	if err != nil {
		return fmt.Errorf("cannot list orders for table %d: %w", table.Number, err)
	}
	for _, order := range orders {
		if !order.IsTerminal() {
			return ErrTableHasActiveOrder
		}
	}

	if err := c.tableRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("cannot delete table %d: %w", table.Number, err)
	}
	return nil
}

// PlaceOrder persists a submitted cart. The total is computed client-side
// and trusted at write time. Whether the table is active is deliberately not
// checked here; the ordering client performs that precondition itself.
func (c *Coordinator) PlaceOrder(ctx context.Context, tableNumber int, items []OrderItem, totalAmount float64) (*Order, error) {
	if tableNumber <= 0 {
		return nil, ErrInvalidTableNumber
	}
	if len(items) == 0 {
		return nil, ErrInvalidOrder
	}
	for _, item := range items {
		if item.Quantity < 1 || item.MenuItemID == "" {
			return nil, ErrInvalidOrder
		}
	}

	order := NewOrder(tableNumber)
	order.Items = items
	order.TotalAmount = totalAmount
	order.BeforeCreate()

	if err := c.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("cannot create order: %w", err)
	}

	c.publishOrderCreated(ctx, order)
	return order, nil
}

// AdvanceOrderStatus sets an order's fulfillment status. Any valid status
// value is accepted by default, so the kitchen's completed to in-progress
// revert works; setting the current value again is harmless and simply
// re-emits the change event.
func (c *Coordinator) AdvanceOrderStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := c.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if err := c.validateTransition(order.Status, status); err != nil {
		return nil, err
	}

	order.Status = status
	order.BeforeUpdate()
	if err := c.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("cannot save order: %w", err)
	}

	c.publishOrderStatus(ctx, order)
	return order, nil
}

// SetPaymentStatus records a payment state change. No event is published for
// payment changes; table watchers refresh their order list instead.
func (c *Coordinator) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	if !ValidPaymentStatus(status) {
		return nil, ErrInvalidPaymentStatus
	}

	order, err := c.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	order.MarkPayment(status)
	if err := c.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("cannot save order: %w", err)
	}
	return order, nil
}

// RecordSpecialRequest appends free-text to the order's request list.
func (c *Coordinator) RecordSpecialRequest(ctx context.Context, id uuid.UUID, text string) (*Order, error) {
	if text == "" {
		return nil, fmt.Errorf("special request text is required")
	}

	order, err := c.orderRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	order.AddSpecialRequest(text)
	if err := c.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("cannot save order: %w", err)
	}
	return order, nil
}

// CurrentOrderForTable resolves which order a table session is about.
// Multiple non-terminal orders for one number should not occur under correct
// sequencing, but are handled defensively: any pending or in-progress order
// wins, newest first; otherwise the newest completed order created after the
// table's last activation, so a prior session's order is never resurrected.
func (c *Coordinator) CurrentOrderForTable(ctx context.Context, number int) (*Order, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}

	orders, err := c.orderRepo.ListByTable(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders for table %d: %w", number, err)
	}

	var open *Order
	for _, order := range orders {
		if order.Status != StatusPending && order.Status != StatusInProgress {
			continue
		}
		if open == nil || order.CreatedAt.After(open.CreatedAt) {
			open = order
		}
	}
	if open != nil {
		return open, nil
	}

	table, err := c.tableRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("cannot load table %d: %w", number, err)
	}

	var sessionStart time.Time
	if table != nil && table.LastActivatedAt != nil {
		sessionStart = *table.LastActivatedAt
	}

	var done *Order
	for _, order := range orders {
		if order.Status != StatusCompleted {
			continue
		}
		if !sessionStart.IsZero() && !order.CreatedAt.After(sessionStart) {
			continue
		}
		if done == nil || order.CreatedAt.After(done.CreatedAt) {
			done = order
		}
	}
	if done != nil {
		return done, nil
	}
	return nil, ErrNoCurrentOrder
}

// SettleAndDeactivate marks the table's current order paid, then deactivates
// the table. The two writes are independent; when deactivation fails the
// payment is compensated back to pending so the table keeps blocking.
func (c *Coordinator) SettleAndDeactivate(ctx context.Context, number int) (*Table, *Order, error) {
	order, err := c.CurrentOrderForTable(ctx, number)
	if err != nil {
		return nil, nil, err
	}

	settled := false
	if order.PaymentStatus == PaymentPending {
		order.MarkPayment(PaymentPaid)
		if err := c.orderRepo.Save(ctx, order); err != nil {
			return nil, nil, fmt.Errorf("cannot save order: %w", err)
		}
		settled = true
	}

	table, err := c.DeactivateTable(ctx, number)
	if err != nil {
		if settled {
			order.MarkPayment(PaymentPending)
			if compErr := c.orderRepo.Save(ctx, order); compErr != nil {
				c.logger.Error("cannot revert payment after failed deactivation",
					"order_id", order.ID.String(), "table_number", number, "error", compErr)
			}
		}
		return nil, nil, err
	}
	return table, order, nil
}

// RequestAssistance raises a customer request event for staff displays. The
// table is not required to exist; the request carries only the number.
func (c *Coordinator) RequestAssistance(ctx context.Context, number int, requestType string) error {
	if number <= 0 {
		return ErrInvalidTableNumber
	}
	if requestType == "" {
		return fmt.Errorf("request type is required")
	}
	if c.publisher == nil {
		return nil
	}

	event := pkg.CustomerRequestEvent{
		EventType:   pkg.EventCustomerRequest,
		TableNumber: number,
		RequestType: requestType,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cannot marshal customer request: %w", err)
	}
	if err := c.publisher.Publish(ctx, pkg.ServiceRequestTopic, payload); err != nil {
		return fmt.Errorf("cannot publish customer request: %w", err)
	}
	return nil
}

// RequestPaymentAtRegister signals staff that the table wants to settle at
// the register.
func (c *Coordinator) RequestPaymentAtRegister(ctx context.Context, number int) error {
	if number <= 0 {
		return ErrInvalidTableNumber
	}
	if c.publisher == nil {
		return nil
	}

	event := pkg.PaymentAtRegisterEvent{
		EventType:   pkg.EventPaymentAtRegister,
		TableNumber: number,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cannot marshal payment request: %w", err)
	}
	if err := c.publisher.Publish(ctx, pkg.ServiceRequestTopic, payload); err != nil {
		return fmt.Errorf("cannot publish payment request: %w", err)
	}
	return nil
}

func (c *Coordinator) ensureNoDebt(ctx context.Context, number int) error {
	unpaid, err := c.orderRepo.FindUnpaidByTable(ctx, number)
	if err != nil {
		return fmt.Errorf("cannot check orders for table %d: %w", number, err)
	}
	if len(unpaid) > 0 {
		return ErrUnpaidOrderExists
	}
	return nil
}

// materializeTable is the single factory path for lazy table creation, so
// the behavior can be switched off by configuration without touching call
// sites.
func (c *Coordinator) materializeTable(ctx context.Context, number int) (*Table, error) {
	if !c.lazyCreate {
		return nil, ErrTableNotFound
	}

	table := NewTable(number)
	table.BeforeCreate()
	if err := c.tableRepo.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("cannot create table %d: %w", number, err)
	}
	return table, nil
}

func (c *Coordinator) publishTableStatus(ctx context.Context, table *Table, changeType string) {
	if c.publisher == nil || table == nil {
		return
	}

	event := pkg.TableStatusEvent{
		EventType:   pkg.EventTableStatusChanged,
		Type:        changeType,
		TableNumber: table.Number,
		Table:       tableSnapshot(table),
		Source:      eventSource,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("cannot marshal table status event", "error", err, "table_number", table.Number)
		return
	}
	if err := c.publisher.Publish(ctx, pkg.TableStatusTopic, payload); err != nil {
		c.logger.Error("cannot publish table status event", "error", err, "table_number", table.Number)
	}
}

func (c *Coordinator) publishOrderCreated(ctx context.Context, order *Order) {
	if c.publisher == nil || order == nil {
		return
	}

	event := pkg.OrderCreatedEvent{
		EventType:  pkg.EventOrderCreated,
		Order:      OrderSnapshot(order),
		Source:     eventSource,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("cannot marshal order created event", "error", err, "order_id", order.ID.String())
		return
	}
	if err := c.publisher.Publish(ctx, pkg.OrderLifecycleTopic, payload); err != nil {
		c.logger.Error("cannot publish order created event", "error", err, "order_id", order.ID.String())
	}
}

func (c *Coordinator) publishOrderStatus(ctx context.Context, order *Order) {
	if c.publisher == nil || order == nil {
		return
	}

	event := pkg.OrderStatusEvent{
		EventType:  pkg.EventOrderStatusChanged,
		OrderID:    order.ID.String(),
		Status:     order.Status,
		Source:     eventSource,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("cannot marshal order status event", "error", err, "order_id", order.ID.String())
		return
	}
	if err := c.publisher.Publish(ctx, pkg.OrderLifecycleTopic, payload); err != nil {
		c.logger.Error("cannot publish order status event", "error", err, "order_id", order.ID.String())
	}
}

func tableSnapshot(t *Table) *pkg.TableSnapshot {
	return &pkg.TableSnapshot{
		ID:                t.ID.String(),
		Number:            t.Number,
		IsActive:          t.IsActive,
		LastActivatedAt:   t.LastActivatedAt,
		LastDeactivatedAt: t.LastDeactivatedAt,
	}
}

// OrderSnapshot converts an order into its event payload form.
func OrderSnapshot(o *Order) pkg.OrderSnapshot {
	lines := make([]pkg.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, pkg.OrderLine{
			MenuItemID:      item.MenuItemID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			SelectedOptions: item.SelectedOptions,
			Notes:           item.Notes,
		})
	}
	return pkg.OrderSnapshot{
		ID:            o.ID.String(),
		TableNumber:   o.TableNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Items:         lines,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
	}
}
