package projection

import (
	"context"
	"sort"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/quickdine/quickdine/pkg"
)

// TableWatchProjection is the floor overview: the activation state of every
// table keyed by table number, plus the orders still awaiting payment. The
// bus carries no payment change events, so settled orders only leave the
// unpaid list on terminal status changes or on Reconcile.
type TableWatchProjection struct {
	subscriber events.Subscriber
	logger     apt.Logger

	mu     sync.RWMutex
	tables map[int]pkg.TableSnapshot
	unpaid map[string]pkg.OrderSnapshot
}

func NewTableWatchProjection(sub events.Subscriber, logger apt.Logger) *TableWatchProjection {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &TableWatchProjection{
		subscriber: sub,
		logger:     logger,
		tables:     make(map[int]pkg.TableSnapshot),
		unpaid:     make(map[string]pkg.OrderSnapshot),
	}
}

func (p *TableWatchProjection) Start(ctx context.Context) error {
	if err := p.subscriber.Subscribe(ctx, pkg.TableStatusTopic, p.handleEvent); err != nil {
		return err
	}
	return p.subscriber.Subscribe(ctx, pkg.OrderLifecycleTopic, p.handleEvent)
}

func (p *TableWatchProjection) handleEvent(ctx context.Context, msg []byte) error {
	evt, err := pkg.Decode(msg)
	if err != nil {
		p.logger.Debug("ignoring undecodable event", "error", err)
		return nil
	}
	p.ApplyEvent(evt)
	return nil
}

func (p *TableWatchProjection) ApplyEvent(evt interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := evt.(type) {
	case pkg.TableStatusEvent:
		if e.Table != nil {
			p.tables[e.TableNumber] = *e.Table
		}
	case pkg.OrderCreatedEvent:
		if e.Order.PaymentStatus == "pending" && !pkg.TerminalOrderStatus(e.Order.Status) {
			p.unpaid[e.Order.ID] = e.Order
		}
	case pkg.OrderStatusEvent:
		if pkg.TerminalOrderStatus(e.Status) {
			delete(p.unpaid, e.OrderID)
			return
		}
		if order, ok := p.unpaid[e.OrderID]; ok {
			order.Status = e.Status
			p.unpaid[e.OrderID] = order
		}
	}
}

// Reconcile replaces the overview with authoritative state. Orders that were
// paid since the last reconcile drop out here.
func (p *TableWatchProjection) Reconcile(tables []pkg.TableSnapshot, orders []pkg.OrderSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tables = make(map[int]pkg.TableSnapshot, len(tables))
	for _, t := range tables {
		p.tables[t.Number] = t
	}

	p.unpaid = make(map[string]pkg.OrderSnapshot)
	for _, o := range orders {
		if o.PaymentStatus == "pending" && !pkg.TerminalOrderStatus(o.Status) {
			p.unpaid[o.ID] = o
		}
	}
}

func (p *TableWatchProjection) Table(number int) (pkg.TableSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.tables[number]
	return t, ok
}

// Tables returns the overview sorted by table number.
func (p *TableWatchProjection) Tables() []pkg.TableSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]pkg.TableSnapshot, 0, len(p.tables))
	for _, t := range p.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// UnpaidOrders returns the orders still blocking settlement, oldest first.
func (p *TableWatchProjection) UnpaidOrders() []pkg.OrderSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]pkg.OrderSnapshot, 0, len(p.unpaid))
	for _, o := range p.unpaid {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
