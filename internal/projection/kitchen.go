package projection

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/quickdine/quickdine/pkg"
)

// maxNotifications bounds the staff notification feed; the oldest entries
// fall off first.
const maxNotifications = 50

// Notification is one staff-facing alert derived from the service topics.
type Notification struct {
	Type        string    `json:"type"`
	TableNumber int       `json:"table_number"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// KitchenProjection is the staff display view: every order still in flight,
// newest state per order, plus a bounded feed of customer notifications.
// Terminal orders leave the board on their final status event.
type KitchenProjection struct {
	subscriber events.Subscriber
	logger     apt.Logger

	mu            sync.RWMutex
	orders        map[string]pkg.OrderSnapshot
	notifications []Notification
}

func NewKitchenProjection(sub events.Subscriber, logger apt.Logger) *KitchenProjection {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &KitchenProjection{
		subscriber: sub,
		logger:     logger,
		orders:     make(map[string]pkg.OrderSnapshot),
	}
}

func (p *KitchenProjection) Start(ctx context.Context) error {
	if err := p.subscriber.Subscribe(ctx, pkg.OrderLifecycleTopic, p.handleEvent); err != nil {
		return err
	}
	return p.subscriber.Subscribe(ctx, pkg.ServiceRequestTopic, p.handleEvent)
}

func (p *KitchenProjection) handleEvent(ctx context.Context, msg []byte) error {
	evt, err := pkg.Decode(msg)
	if err != nil {
		p.logger.Debug("ignoring undecodable event", "error", err)
		return nil
	}
	p.ApplyEvent(evt)
	return nil
}

func (p *KitchenProjection) ApplyEvent(evt interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := evt.(type) {
	case pkg.OrderCreatedEvent:
		p.orders[e.Order.ID] = e.Order

	case pkg.OrderStatusEvent:
		order, ok := p.orders[e.OrderID]
		if !ok {
			p.logger.Debug("status for unknown order", "order_id", e.OrderID)
			return
		}
		if pkg.TerminalOrderStatus(e.Status) {
			delete(p.orders, e.OrderID)
			return
		}
		order.Status = e.Status
		p.orders[e.OrderID] = order

	case pkg.KitchenUpdateEvent:
		if e.Order != nil {
			p.orders[e.Order.ID] = *e.Order
		}
		if e.TableNumber > 0 {
			p.pushNotification(Notification{Type: e.Type, TableNumber: e.TableNumber, OccurredAt: e.OccurredAt})
		}

	case pkg.CustomerRequestEvent:
		p.pushNotification(Notification{Type: e.RequestType, TableNumber: e.TableNumber, OccurredAt: e.OccurredAt})

	case pkg.PaymentAtRegisterEvent:
		p.pushNotification(Notification{Type: "pay-at-register", TableNumber: e.TableNumber, OccurredAt: e.OccurredAt})
	}
}

func (p *KitchenProjection) pushNotification(n Notification) {
	p.notifications = append(p.notifications, n)
	if len(p.notifications) > maxNotifications {
		p.notifications = p.notifications[len(p.notifications)-maxNotifications:]
	}
}

// Reconcile replaces the in-flight board with authoritative state. Terminal
// orders in the input are skipped. The notification feed is ephemeral and
// left untouched.
func (p *KitchenProjection) Reconcile(orders []pkg.OrderSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.orders = make(map[string]pkg.OrderSnapshot, len(orders))
	for _, o := range orders {
		if pkg.TerminalOrderStatus(o.Status) {
			continue
		}
		p.orders[o.ID] = o
	}
}

func (p *KitchenProjection) Orders() []pkg.OrderSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]pkg.OrderSnapshot, 0, len(p.orders))
	for _, o := range p.orders {
		out = append(out, o)
	}
	return out
}

func (p *KitchenProjection) Notifications() []Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}
