package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/quickdine/quickdine/pkg"
)

const relaySource = "dining-service"

// Relay bridges the bus and the SSE hub. It subscribes to every topic the
// service publishes on, pushes each event to connected SSE clients, and
// re-broadcasts customer assistance requests as kitchen updates so kitchen
// displays see them without subscribing to the service topic.
type Relay struct {
	subscriber events.Subscriber
	publisher  events.Publisher
	hub        *Hub
	logger     apt.Logger
}

func NewRelay(subscriber events.Subscriber, publisher events.Publisher, hub *Hub, logger apt.Logger) *Relay {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Relay{
		subscriber: subscriber,
		publisher:  publisher,
		hub:        hub,
		logger:     logger,
	}
}

func (r *Relay) Start(ctx context.Context) error {
	topics := []string{pkg.TableStatusTopic, pkg.OrderLifecycleTopic, pkg.ServiceRequestTopic}
	for _, topic := range topics {
		if err := r.subscriber.Subscribe(ctx, topic, r.handleMessage); err != nil {
			return err
		}
	}
	r.logger.Info("event relay started", "topics", topics)
	return nil
}

func (r *Relay) Stop(ctx context.Context) error {
	r.hub.Close()
	return nil
}

func (r *Relay) handleMessage(ctx context.Context, msg []byte) error {
	evt, err := pkg.Decode(msg)
	if err != nil {
		// Malformed payloads never reach subscribers.
		r.logger.Error("dropping undecodable event", "error", err)
		return nil
	}

	switch e := evt.(type) {
	case pkg.TableStatusEvent:
		r.hub.Broadcast(Message{Event: e.EventType, Data: msg})
	case pkg.OrderCreatedEvent:
		r.hub.Broadcast(Message{Event: e.EventType, Data: msg})
	case pkg.OrderStatusEvent:
		r.hub.Broadcast(Message{Event: e.EventType, Data: msg})
	case pkg.KitchenUpdateEvent:
		r.hub.Broadcast(Message{Event: e.EventType, Data: msg})
	case pkg.PaymentAtRegisterEvent:
		r.hub.Broadcast(Message{Event: e.EventType, Data: msg})
	case pkg.CustomerRequestEvent:
		r.hub.Broadcast(Message{Event: e.EventType, Data: msg})
		r.relayCustomerRequest(ctx, e)
	}

	return nil
}

// relayCustomerRequest turns an assistance request into a kitchen update so
// staff displays receive it on the topic they already watch.
func (r *Relay) relayCustomerRequest(ctx context.Context, e pkg.CustomerRequestEvent) {
	if r.publisher == nil {
		return
	}

	update := pkg.KitchenUpdateEvent{
		EventType:   pkg.EventKitchenUpdate,
		Type:        e.RequestType,
		TableNumber: e.TableNumber,
		Source:      relaySource,
		OccurredAt:  time.Now(),
	}

	payload, err := json.Marshal(update)
	if err != nil {
		r.logger.Error("cannot marshal kitchen update", "error", err)
		return
	}

	if err := r.publisher.Publish(ctx, pkg.OrderLifecycleTopic, payload); err != nil {
		r.logger.Error("cannot relay customer request", "error", err, "table_number", e.TableNumber)
	}
}
