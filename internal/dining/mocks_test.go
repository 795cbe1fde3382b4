package dining

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

type memTableRepo struct {
	mu     sync.Mutex
	tables map[uuid.UUID]*Table

	failCreate error
	failSave   error
	failGet    error
}

func newMemTableRepo() *memTableRepo {
	return &memTableRepo{tables: make(map[uuid.UUID]*Table)}
}

func (r *memTableRepo) Create(ctx context.Context, table *Table) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *table
	r.tables[table.ID] = &copied
	return nil
}

func (r *memTableRepo) Get(ctx context.Context, id uuid.UUID) (*Table, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[id]
	if !ok {
		return nil, nil
	}
	copied := *table
	return &copied, nil
}

func (r *memTableRepo) GetByNumber(ctx context.Context, number int) (*Table, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, table := range r.tables {
		if table.Number == number {
			copied := *table
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memTableRepo) List(ctx context.Context) ([]*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Table, 0, len(r.tables))
	for _, table := range r.tables {
		copied := *table
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memTableRepo) Save(ctx context.Context, table *Table) error {
	if r.failSave != nil {
		return r.failSave
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[table.ID]; !ok {
		return ErrTableNotFound
	}
	copied := *table
	r.tables[table.ID] = &copied
	return nil
}

func (r *memTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; !ok {
		return ErrTableNotFound
	}
	delete(r.tables, id)
	return nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order

	failSave   error
	saveCount  int
	failSaveAt int
	failCreate error
	failUnpaid error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (r *memOrderRepo) Create(ctx context.Context, order *Order) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) List(ctx context.Context) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Order, 0, len(r.orders))
	for _, order := range r.orders {
		copied := *order
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memOrderRepo) ListByTable(ctx context.Context, tableNumber int) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, order := range r.orders {
		if order.TableNumber == tableNumber {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListByStatus(ctx context.Context, status string) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, order := range r.orders {
		if order.Status == status {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindUnpaidByTable(ctx context.Context, tableNumber int) ([]*Order, error) {
	if r.failUnpaid != nil {
		return nil, r.failUnpaid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, order := range r.orders {
		if order.TableNumber == tableNumber && order.IsUnpaid() {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Save(ctx context.Context, order *Order) error {
	r.mu.Lock()
	r.saveCount++
	count := r.saveCount
	r.mu.Unlock()

	if r.failSave != nil && (r.failSaveAt == 0 || count == r.failSaveAt) {
		return r.failSave
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return ErrOrderNotFound
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

type memFloorPlanRepo struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*FloorPlan
}

func newMemFloorPlanRepo() *memFloorPlanRepo {
	return &memFloorPlanRepo{plans: make(map[uuid.UUID]*FloorPlan)}
}

func (r *memFloorPlanRepo) Create(ctx context.Context, plan *FloorPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *plan
	r.plans[plan.ID] = &copied
	return nil
}

func (r *memFloorPlanRepo) Get(ctx context.Context, id uuid.UUID) (*FloorPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	copied := *plan
	return &copied, nil
}

func (r *memFloorPlanRepo) GetDefault(ctx context.Context) (*FloorPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, plan := range r.plans {
		if plan.IsDefault {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memFloorPlanRepo) List(ctx context.Context) ([]*FloorPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FloorPlan, 0, len(r.plans))
	for _, plan := range r.plans {
		copied := *plan
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memFloorPlanRepo) Save(ctx context.Context, plan *FloorPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; !ok {
		return errors.New("floor plan not found")
	}
	copied := *plan
	r.plans[plan.ID] = &copied
	return nil
}

func (r *memFloorPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return errors.New("floor plan not found")
	}
	delete(r.plans, id)
	return nil
}

func (r *memFloorPlanRepo) ClearDefaultExcept(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for planID, plan := range r.plans {
		if planID != id {
			plan.IsDefault = false
		}
	}
	return nil
}

type publishedEvent struct {
	topic   string
	payload []byte
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent

	failPublish error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if p.failPublish != nil {
		return p.failPublish
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, payload: msg})
	return nil
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
