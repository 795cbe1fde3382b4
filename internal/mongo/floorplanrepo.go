package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quickdine/quickdine/internal/dining"
)

type FloorPlanRepo struct {
	collection *mongo.Collection
}

func NewFloorPlanRepo(db *mongo.Database) *FloorPlanRepo {
	return &FloorPlanRepo{
		collection: db.Collection("floor_plans"),
	}
}

func (r *FloorPlanRepo) Create(ctx context.Context, plan *dining.FloorPlan) error {
	if plan == nil {
		return fmt.Errorf("floor plan is nil")
	}

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return fmt.Errorf("cannot create floor plan: %w", err)
	}

	return nil
}

func (r *FloorPlanRepo) Get(ctx context.Context, id uuid.UUID) (*dining.FloorPlan, error) {
	var plan dining.FloorPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get floor plan: %w", err)
	}
	return &plan, nil
}

func (r *FloorPlanRepo) GetDefault(ctx context.Context) (*dining.FloorPlan, error) {
	var plan dining.FloorPlan
	err := r.collection.FindOne(ctx, bson.M{"is_default": true}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get default floor plan: %w", err)
	}
	return &plan, nil
}

func (r *FloorPlanRepo) List(ctx context.Context) ([]*dining.FloorPlan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list floor plans: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*dining.FloorPlan
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode floor plans: %w", err)
	}

	return result, nil
}

func (r *FloorPlanRepo) Save(ctx context.Context, plan *dining.FloorPlan) error {
	if plan == nil {
		return fmt.Errorf("floor plan is nil")
	}

	filter := bson.M{"_id": plan.ID}
	update := bson.M{"$set": plan}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update floor plan: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("floor plan not found")
	}

	return nil
}

// ClearDefaultExcept unsets is_default on every plan but the given one so
// that at most one default exists.
func (r *FloorPlanRepo) ClearDefaultExcept(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{
		"_id":        bson.M{"$ne": id},
		"is_default": true,
	}
	update := bson.M{"$set": bson.M{"is_default": false}}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("cannot clear default floor plans: %w", err)
	}

	return nil
}

func (r *FloorPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete floor plan: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("floor plan not found")
	}

	return nil
}
