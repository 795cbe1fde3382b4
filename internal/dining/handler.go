package dining

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	coordinator   *Coordinator
	tableRepo     TableRepo
	orderRepo     OrderRepo
	floorPlanRepo FloorPlanRepo
	logger        apt.Logger
	config        *apt.Config
	tlm           *telemetry.HTTP
	staffGate     func(http.Handler) http.Handler
}

type HandlerDeps struct {
	Coordinator   *Coordinator
	TableRepo     TableRepo
	OrderRepo     OrderRepo
	FloorPlanRepo FloorPlanRepo
	// StaffGate wraps routes that require a staff credential. Nil leaves
	// those routes open, which only tests should do.
	StaffGate func(http.Handler) http.Handler
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		coordinator:   hd.Coordinator,
		tableRepo:     hd.TableRepo,
		orderRepo:     hd.OrderRepo,
		floorPlanRepo: hd.FloorPlanRepo,
		logger:        logger,
		config:        config,
		tlm:           telemetry.NewHTTP(),
		staffGate:     hd.StaffGate,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	gate := h.staffGate
	if gate == nil {
		gate = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Get("/{id}", h.GetTable)

		// Table URLs are handed to whoever sits down, so activation and
		// status stay unauthenticated.
		r.Post("/{id}/activate", h.ActivateTable)
		r.Post("/{id}/deactivate", h.DeactivateTable)
		r.Get("/{id}/status", h.TableStatus)
		r.Get("/{id}/current-order", h.CurrentOrder)
		r.Post("/{id}/assistance", h.RequestAssistance)
		r.Post("/{id}/pay-at-register", h.RequestPaymentAtRegister)

		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Post("/", h.CreateTable)
			r.Put("/{id}/position", h.UpdateTablePosition)
			r.Put("/{id}/shape", h.UpdateTableShape)
			r.Delete("/{id}", h.DeleteTable)
			r.Post("/{id}/settle", h.SettleTable)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)
		r.Get("/status/{status}", h.ListOrdersByStatus)
		r.Put("/{id}/special-request", h.AddSpecialRequest)

		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Put("/{id}/status", h.UpdateOrderStatus)
			r.Put("/{id}/payment-status", h.UpdatePaymentStatus)
		})
	})

	r.Route("/floor-plans", func(r chi.Router) {
		r.Get("/", h.ListFloorPlans)
		r.Get("/default", h.GetDefaultFloorPlan)
		r.Get("/{id}", h.GetFloorPlan)

		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Post("/", h.CreateFloorPlan)
			r.Put("/{id}", h.UpdateFloorPlan)
			r.Delete("/{id}", h.DeleteFloorPlan)
		})
	})
}

// Table handlers

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	tables, err := h.tableRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving tables", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	apt.RespondCollection(w, tables, "table")
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.tableRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}
	if table == nil {
		apt.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req TableCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	validationErrors := ValidateTableCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	table, err := h.coordinator.CreateTable(ctx, req.Number, req.Shape, req.Position)
	if err != nil {
		h.respondDomainError(w, log, err, "create table")
		return
	}

	links := apt.RESTfulLinksFor(table)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) ActivateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ActivateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.coordinator.ActivateTable(ctx, number)
	if err != nil {
		h.respondDomainError(w, log, err, "activate table")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) DeactivateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeactivateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.coordinator.DeactivateTable(ctx, number)
	if err != nil {
		h.respondDomainError(w, log, err, "deactivate table")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) TableStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.TableStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.coordinator.TableStatus(ctx, number)
	if err != nil {
		h.respondDomainError(w, log, err, "get table status")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) CurrentOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CurrentOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.coordinator.CurrentOrderForTable(ctx, number)
	if err != nil {
		h.respondDomainError(w, log, err, "get current order")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) RequestAssistance(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RequestAssistance")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	var req AssistanceRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}
	if strings.TrimSpace(req.RequestType) == "" {
		apt.RespondError(w, http.StatusBadRequest, "Request type is required")
		return
	}

	if err := h.coordinator.RequestAssistance(ctx, number, req.RequestType); err != nil {
		h.respondDomainError(w, log, err, "request assistance")
		return
	}

	w.WriteHeader(http.StatusAccepted)
	apt.RespondSuccess(w, map[string]interface{}{"table_number": number, "request_type": req.RequestType})
}

func (h *Handler) RequestPaymentAtRegister(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RequestPaymentAtRegister")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	if err := h.coordinator.RequestPaymentAtRegister(ctx, number); err != nil {
		h.respondDomainError(w, log, err, "request register payment")
		return
	}

	w.WriteHeader(http.StatusAccepted)
	apt.RespondSuccess(w, map[string]interface{}{"table_number": number})
}

func (h *Handler) SettleTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SettleTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	number, ok := h.parseNumberParam(w, r, log)
	if !ok {
		return
	}

	table, _, err := h.coordinator.SettleAndDeactivate(ctx, number)
	if err != nil {
		h.respondDomainError(w, log, err, "settle table")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) UpdateTablePosition(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTablePosition")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TablePositionRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	table, err := h.coordinator.UpdateTablePosition(ctx, id, req.X, req.Y)
	if err != nil {
		h.respondDomainError(w, log, err, "update table position")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) UpdateTableShape(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTableShape")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TableShapeRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	table, err := h.coordinator.UpdateTableShape(ctx, id, req.Shape)
	if err != nil {
		h.respondDomainError(w, log, err, "update table shape")
		return
	}

	links := apt.RESTfulLinksFor(table)
	apt.RespondSuccess(w, table, links...)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.coordinator.DeleteTable(ctx, id); err != nil {
		h.respondDomainError(w, log, err, "delete table")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Order handlers

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	tableParam := r.URL.Query().Get("table")

	var orders []*Order
	var err error

	if tableParam != "" {
		number, convErr := strconv.Atoi(tableParam)
		if convErr != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid table number")
			return
		}
		orders, err = h.orderRepo.ListByTable(ctx, number)
	} else {
		orders, err = h.orderRepo.List(ctx)
	}

	if err != nil {
		log.Error("error retrieving orders", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	apt.RespondCollection(w, orders, "order")
}

func (h *Handler) ListOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrdersByStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	status := chi.URLParam(r, "status")
	if !ValidStatus(status) {
		apt.RespondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	orders, err := h.orderRepo.ListByStatus(ctx, status)
	if err != nil {
		log.Error("error retrieving orders by status", "error", err, "status", status)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	apt.RespondCollection(w, orders, "order")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.orderRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if order == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req OrderCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	validationErrors := ValidateOrderCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	items := make([]OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, OrderItem{
			MenuItemID:      item.MenuItemID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			SelectedOptions: item.SelectedOptions,
			Notes:           item.Notes,
		})
	}

	order, err := h.coordinator.PlaceOrder(ctx, req.TableNumber, items, req.TotalAmount)
	if err != nil {
		h.respondDomainError(w, log, err, "create order")
		return
	}

	links := apt.RESTfulLinksFor(order)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.coordinator.AdvanceOrderStatus(ctx, id, req.Status)
	if err != nil {
		h.respondDomainError(w, log, err, "update order status")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdatePaymentStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req PaymentStatusRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	order, err := h.coordinator.SetPaymentStatus(ctx, id, req.PaymentStatus)
	if err != nil {
		h.respondDomainError(w, log, err, "update payment status")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) AddSpecialRequest(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddSpecialRequest")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req SpecialRequestRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	if strings.TrimSpace(req.Request) == "" {
		apt.RespondError(w, http.StatusBadRequest, "Request text is required")
		return
	}

	order, err := h.coordinator.RecordSpecialRequest(ctx, id, req.Request)
	if err != nil {
		h.respondDomainError(w, log, err, "add special request")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

// Floor plan handlers

func (h *Handler) ListFloorPlans(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListFloorPlans")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	plans, err := h.floorPlanRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving floor plans", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve floor plans")
		return
	}

	apt.RespondCollection(w, plans, "floor-plan")
}

// GetDefaultFloorPlan returns the default plan, creating one spanning every
// known table when none is marked default yet.
func (h *Handler) GetDefaultFloorPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetDefaultFloorPlan")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	plan, err := h.floorPlanRepo.GetDefault(ctx)
	if err != nil {
		log.Error("error loading default floor plan", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve default floor plan")
		return
	}

	if plan == nil {
		tables, err := h.tableRepo.List(ctx)
		if err != nil {
			log.Error("error listing tables for default plan", "error", err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve default floor plan")
			return
		}

		plan = NewFloorPlan("Default Floor Plan")
		plan.IsDefault = true
		for _, table := range tables {
			plan.TableIDs = append(plan.TableIDs, table.ID)
		}
		plan.BeforeCreate()

		if err := h.floorPlanRepo.Create(ctx, plan); err != nil {
			log.Error("cannot create default floor plan", "error", err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not create default floor plan")
			return
		}
	}

	links := apt.RESTfulLinksFor(plan)
	apt.RespondSuccess(w, plan, links...)
}

func (h *Handler) GetFloorPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetFloorPlan")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	plan, err := h.floorPlanRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading floor plan", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusNotFound, "Floor plan not found")
		return
	}
	if plan == nil {
		apt.RespondError(w, http.StatusNotFound, "Floor plan not found")
		return
	}

	links := apt.RESTfulLinksFor(plan)
	apt.RespondSuccess(w, plan, links...)
}

func (h *Handler) CreateFloorPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateFloorPlan")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req FloorPlanCreateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	validationErrors := ValidateFloorPlanCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	tableIDs, ok := h.resolveTableIDs(w, r, log, req.TableIDs)
	if !ok {
		return
	}

	plan := NewFloorPlan(req.Name)
	plan.TableIDs = tableIDs
	plan.IsDefault = req.IsDefault
	plan.BeforeCreate()

	if err := h.floorPlanRepo.Create(ctx, plan); err != nil {
		log.Error("cannot create floor plan", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create floor plan")
		return
	}

	if plan.IsDefault {
		if err := h.floorPlanRepo.ClearDefaultExcept(ctx, plan.ID); err != nil {
			log.Error("cannot clear previous default plans", "error", err)
		}
	}

	links := apt.RESTfulLinksFor(plan)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, plan, links...)
}

func (h *Handler) UpdateFloorPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateFloorPlan")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req FloorPlanUpdateRequest
	if !h.decodePayload(w, r, log, &req) {
		return
	}

	plan, err := h.floorPlanRepo.Get(ctx, id)
	if err != nil || plan == nil {
		log.Error("floor plan not found", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusNotFound, "Floor plan not found")
		return
	}

	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.TableIDs != nil {
		tableIDs, ok := h.resolveTableIDs(w, r, log, req.TableIDs)
		if !ok {
			return
		}
		plan.TableIDs = tableIDs
	}
	if req.IsDefault != nil {
		plan.IsDefault = *req.IsDefault
	}

	plan.BeforeUpdate()

	if err := h.floorPlanRepo.Save(ctx, plan); err != nil {
		log.Error("cannot update floor plan", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not update floor plan")
		return
	}

	if plan.IsDefault {
		if err := h.floorPlanRepo.ClearDefaultExcept(ctx, plan.ID); err != nil {
			log.Error("cannot clear previous default plans", "error", err)
		}
	}

	links := apt.RESTfulLinksFor(plan)
	apt.RespondSuccess(w, plan, links...)
}

func (h *Handler) DeleteFloorPlan(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteFloorPlan")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.floorPlanRepo.Delete(ctx, id); err != nil {
		log.Error("cannot delete floor plan", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete floor plan")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

// respondDomainError maps coordinator errors onto HTTP statuses. Precondition
// violations surface their message verbatim; everything else stays generic.
func (h *Handler) respondDomainError(w http.ResponseWriter, log apt.Logger, err error, action string) {
	switch {
	case IsPrecondition(err):
		apt.RespondError(w, http.StatusBadRequest, err.Error())
	case IsNotFound(err):
		apt.RespondError(w, http.StatusNotFound, err.Error())
	default:
		log.Error("cannot "+action, "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not "+action)
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

// parseNumberParam reads the table number from the id position of the route.
// Activation-style routes address tables by their public number, not by
// document id.
func (h *Handler) parseNumberParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (int, bool) {
	numberStr := chi.URLParam(r, "id")
	number, err := strconv.Atoi(numberStr)
	if err != nil || number <= 0 {
		log.Debug("invalid table number", "number", numberStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid table number")
		return 0, false
	}
	return number, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, log apt.Logger, out interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		apt.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Debug("error decoding JSON", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}

	return true
}

func (h *Handler) resolveTableIDs(w http.ResponseWriter, r *http.Request, log apt.Logger, raw []string) ([]uuid.UUID, bool) {
	ctx := r.Context()

	tableIDs := make([]uuid.UUID, 0, len(raw))
	for _, idStr := range raw {
		id, err := uuid.Parse(idStr)
		if err != nil {
			log.Debug("invalid table id in floor plan", "table_id", idStr)
			apt.RespondError(w, http.StatusBadRequest, "Invalid table id: "+idStr)
			return nil, false
		}

		table, err := h.tableRepo.Get(ctx, id)
		if err != nil {
			log.Error("error verifying table for floor plan", "error", err, "table_id", idStr)
			apt.RespondError(w, http.StatusInternalServerError, "Could not verify tables")
			return nil, false
		}
		if table == nil {
			apt.RespondError(w, http.StatusBadRequest, "Table does not exist: "+idStr)
			return nil, false
		}

		tableIDs = append(tableIDs, id)
	}

	return tableIDs, true
}
