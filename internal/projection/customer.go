package projection

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/quickdine/quickdine/pkg"
)

// CustomerProjection is the client-side view for one table session: whether
// the table is active and the orders placed against it. Events for other
// tables are ignored. The event bus gives no replay, so Reconcile replaces
// the whole view from an authoritative fetch after any gap.
type CustomerProjection struct {
	tableNumber int
	subscriber  events.Subscriber
	logger      apt.Logger

	mu       sync.RWMutex
	isActive bool
	orders   []pkg.OrderSnapshot
}

func NewCustomerProjection(tableNumber int, sub events.Subscriber, logger apt.Logger) *CustomerProjection {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &CustomerProjection{
		tableNumber: tableNumber,
		subscriber:  sub,
		logger:      logger,
	}
}

func (p *CustomerProjection) Start(ctx context.Context) error {
	if err := p.subscriber.Subscribe(ctx, pkg.TableStatusTopic, p.handleEvent); err != nil {
		return err
	}
	return p.subscriber.Subscribe(ctx, pkg.OrderLifecycleTopic, p.handleEvent)
}

func (p *CustomerProjection) handleEvent(ctx context.Context, msg []byte) error {
	evt, err := pkg.Decode(msg)
	if err != nil {
		p.logger.Debug("ignoring undecodable event", "error", err)
		return nil
	}
	p.ApplyEvent(evt)
	return nil
}

// ApplyEvent folds one decoded event into the view.
func (p *CustomerProjection) ApplyEvent(evt interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := evt.(type) {
	case pkg.TableStatusEvent:
		if e.TableNumber != p.tableNumber {
			return
		}
		if e.Table != nil {
			p.isActive = e.Table.IsActive
		}

	case pkg.OrderCreatedEvent:
		if e.Order.TableNumber != p.tableNumber {
			return
		}
		for i, o := range p.orders {
			if o.ID == e.Order.ID {
				p.orders[i] = e.Order
				return
			}
		}
		p.orders = append(p.orders, e.Order)

	case pkg.OrderStatusEvent:
		for i, o := range p.orders {
			if o.ID == e.OrderID {
				if pkg.TerminalOrderStatus(e.Status) {
					p.orders = append(p.orders[:i], p.orders[i+1:]...)
					return
				}
				p.orders[i].Status = e.Status
				return
			}
		}
		// Status for an order this view never saw: the create event was
		// missed. Nothing to patch; a reconcile will pick it up.
		p.logger.Debug("status for unknown order", "order_id", e.OrderID)
	}
}

// Reconcile replaces the view with authoritative state. Terminal orders do
// not re-enter the view.
func (p *CustomerProjection) Reconcile(isActive bool, orders []pkg.OrderSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.isActive = isActive
	p.orders = nil
	for _, o := range orders {
		if o.TableNumber == p.tableNumber && !pkg.TerminalOrderStatus(o.Status) {
			p.orders = append(p.orders, o)
		}
	}
}

func (p *CustomerProjection) IsActive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isActive
}

func (p *CustomerProjection) Orders() []pkg.OrderSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]pkg.OrderSnapshot, len(p.orders))
	copy(out, p.orders)
	return out
}
