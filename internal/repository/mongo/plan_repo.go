package mongo

import (
	"context"
	"errors"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "subscription_plans"

// mongoPlanRepository implements repository.PlanRepository.
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// GetByID retrieves a single plan.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByCode retrieves a plan by its unique code.
func (r *mongoPlanRepository) GetByCode(ctx context.Context, code string) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns the whole catalog ordered by (tierRank, priceMonthly), the
// order the subscriptions page presents plans in.
func (r *mongoPlanRepository) List(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "tierRank", Value: 1},
		{Key: "priceMonthly", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.SubscriptionPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Upsert inserts or replaces a plan keyed by its code. Used by the seeding
// CLI; the server itself never writes plans.
func (r *mongoPlanRepository) Upsert(ctx context.Context, plan *domain.SubscriptionPlan) error {
	if plan.Code == "" {
		return errors.New("plan code is required")
	}
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	update := bson.M{
		"$set": bson.M{
			"name":             plan.Name,
			"priceMonthly":     plan.PriceMonthly,
			"tierRank":         plan.TierRank,
			"tierLabel":        plan.TierLabel,
			"commitmentMonths": plan.CommitmentMonths,
		},
		"$setOnInsert": bson.M{"_id": plan.ID},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"code": plan.Code}, update, opts)
	return err
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
