package dining

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// FloorPlan is a named arrangement of tables. At most one plan is the
// default; the repository clears the flag on all others when one is marked.
type FloorPlan struct {
	ID        uuid.UUID   `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	TableIDs  []uuid.UUID `json:"table_ids" bson:"table_ids"`
	IsDefault bool        `json:"is_default" bson:"is_default"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

func (p *FloorPlan) GetID() uuid.UUID {
	return p.ID
}

func (p *FloorPlan) ResourceType() string {
	return "floor-plan"
}

func NewFloorPlan(name string) *FloorPlan {
	return &FloorPlan{
		ID:       apt.GenerateNewID(),
		Name:     name,
		TableIDs: []uuid.UUID{},
	}
}

func (p *FloorPlan) EnsureID() {
	if p.ID == uuid.Nil {
		p.ID = apt.GenerateNewID()
	}
}

func (p *FloorPlan) BeforeCreate() {
	p.EnsureID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
}

func (p *FloorPlan) BeforeUpdate() {
	p.UpdatedAt = time.Now()
}
