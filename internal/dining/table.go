package dining

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Table is a physical restaurant table identified by a stable positive
// number. Activation marks the table as seated; the current order is derived
// by querying orders for the number, never stored as a hard link.
type Table struct {
	ID                uuid.UUID  `json:"id" bson:"_id"`
	Number            int        `json:"number" bson:"number"`
	IsActive          bool       `json:"is_active" bson:"is_active"`
	LastActivatedAt   *time.Time `json:"last_activated_at,omitempty" bson:"last_activated_at,omitempty"`
	LastDeactivatedAt *time.Time `json:"last_deactivated_at,omitempty" bson:"last_deactivated_at,omitempty"`
	Position          Position   `json:"position" bson:"position"`
	Shape             string     `json:"shape" bson:"shape"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// Position is the table's location on the floor-plan canvas.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

const (
	ShapeSquare = "square"
	ShapeRound  = "round"
	ShapeRect   = "rect"
)

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func NewTable(number int) *Table {
	return &Table{
		ID:     apt.GenerateNewID(),
		Number: number,
		Shape:  ShapeSquare,
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

// Activate flips the table into its seated state and stamps the transition.
// Precondition checks live in the Coordinator, not here.
func (t *Table) Activate() {
	now := time.Now()
	t.IsActive = true
	t.LastActivatedAt = &now
	t.UpdatedAt = now
}

// Deactivate flips the table back to idle and stamps the transition.
func (t *Table) Deactivate() {
	now := time.Now()
	t.IsActive = false
	t.LastDeactivatedAt = &now
	t.UpdatedAt = now
}

func (t *Table) MoveTo(x, y float64) {
	t.Position = Position{X: x, Y: y}
	t.UpdatedAt = time.Now()
}

func ValidShape(shape string) bool {
	switch shape {
	case ShapeSquare, ShapeRound, ShapeRect:
		return true
	}
	return false
}
