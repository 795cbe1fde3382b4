package stream

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quickdine/quickdine/pkg"
)

const keepaliveInterval = 30 * time.Second

// Handler exposes the event stream over HTTP: GET /events is the SSE feed,
// POST /events lets internal producers inject events onto the bus.
type Handler struct {
	hub       *Hub
	publisher events.Publisher
	logger    apt.Logger
	staffGate func(http.Handler) http.Handler
}

func NewHandler(hub *Hub, publisher events.Publisher, staffGate func(http.Handler) http.Handler, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		hub:       hub,
		publisher: publisher,
		logger:    logger,
		staffGate: staffGate,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.Stream)

	gate := h.staffGate
	if gate == nil {
		gate = func(next http.Handler) http.Handler { return next }
	}
	r.With(gate).Post("/events", h.Publish)
}

// Stream serves the SSE feed. Events carry the bus event_type as the SSE
// event name and the raw JSON payload as data.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID := uuid.New().String()
	h.logger.Info("new SSE connection", "subscriber_id", subscriberID)

	eventChan := h.hub.Subscribe(subscriberID)
	defer h.hub.Unsubscribe(subscriberID)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case msg, ok := <-eventChan:
			if !ok {
				h.logger.Info("event channel closed", "subscriber_id", subscriberID)
				return
			}

			fmt.Fprintf(w, "event: %s\n", msg.Event)
			fmt.Fprintf(w, "data: %s\n\n", msg.Data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

// Publish validates an event payload against the known contract and forwards
// it onto the bus. Unknown event types and invalid payloads are rejected.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	evt, err := pkg.Decode(body)
	if err != nil {
		h.logger.Debug("rejecting event", "error", err)
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	eventType := eventTypeOf(evt)
	topic, err := pkg.TopicFor(eventType)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.publisher.Publish(r.Context(), topic, body); err != nil {
		h.logger.Error("cannot publish event", "error", err, "topic", topic)
		apt.RespondError(w, http.StatusInternalServerError, "Could not publish event")
		return
	}

	w.WriteHeader(http.StatusAccepted)
	apt.RespondSuccess(w, map[string]string{"event_type": eventType, "topic": topic})
}

func eventTypeOf(evt interface{}) string {
	switch e := evt.(type) {
	case pkg.TableStatusEvent:
		return e.EventType
	case pkg.OrderCreatedEvent:
		return e.EventType
	case pkg.OrderStatusEvent:
		return e.EventType
	case pkg.KitchenUpdateEvent:
		return e.EventType
	case pkg.CustomerRequestEvent:
		return e.EventType
	case pkg.PaymentAtRegisterEvent:
		return e.EventType
	default:
		return ""
	}
}
