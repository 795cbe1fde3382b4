package stream

import (
	"sync"

	"github.com/appetiteclub/apt"
)

const subscriberBuffer = 100

// Message is one event ready for fan-out: the SSE event name plus the raw
// JSON payload as it arrived on the bus.
type Message struct {
	Event string
	Data  []byte
}

// Hub fans bus events out to connected SSE subscribers. Each subscriber gets
// its own buffered channel; a full channel drops the event rather than block
// the broadcast, so a slow consumer only hurts itself.
type Hub struct {
	logger apt.Logger

	mu          sync.RWMutex
	subscribers map[string]chan Message
	closed      bool
}

func NewHub(logger apt.Logger) *Hub {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]chan Message),
	}
}

func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriberID, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.logger.Info("subscriber channel full, dropping event", "subscriber_id", subscriberID, "event", msg.Event)
		}
	}
}

func (h *Hub) Subscribe(subscriberID string) <-chan Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Message, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[subscriberID] = ch

	h.logger.Info("new SSE subscriber", "subscriber_id", subscriberID, "total_subscribers", len(h.subscribers))

	return ch
}

func (h *Hub) Unsubscribe(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[subscriberID]; ok {
		close(ch)
		delete(h.subscribers, subscriberID)
		h.logger.Info("SSE subscriber disconnected", "subscriber_id", subscriberID, "total_subscribers", len(h.subscribers))
	}
}

// Close drops and closes every subscriber channel. Later Subscribe calls get
// an already-closed channel so their SSE loops exit immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
