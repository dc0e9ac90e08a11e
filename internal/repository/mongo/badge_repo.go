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

const badgeCollectionName = "badges"

// mongoBadgeRepository implements repository.BadgeRepository.
type mongoBadgeRepository struct {
	collection *mongo.Collection
}

// NewMongoBadgeRepository creates a new badge catalog repository.
func NewMongoBadgeRepository(db *mongo.Database) repository.BadgeRepository {
	return &mongoBadgeRepository{
		collection: db.Collection(badgeCollectionName),
	}
}

// GetByCode retrieves a badge by its unique code.
func (r *mongoBadgeRepository) GetByCode(ctx context.Context, code string) (*domain.Badge, error) {
	var badge domain.Badge
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&badge)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &badge, nil
}

// List returns the whole badge catalog.
func (r *mongoBadgeRepository) List(ctx context.Context) ([]domain.Badge, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var badges []domain.Badge
	if err = cursor.All(ctx, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

// Upsert inserts or replaces a badge keyed by its code. Used by the seeding CLI.
func (r *mongoBadgeRepository) Upsert(ctx context.Context, badge *domain.Badge) error {
	if badge.Code == "" {
		return errors.New("badge code is required")
	}
	if badge.ID == primitive.NilObjectID {
		badge.ID = primitive.NewObjectID()
	}
	update := bson.M{
		"$set": bson.M{
			"name":        badge.Name,
			"description": badge.Description,
		},
		"$setOnInsert": bson.M{"_id": badge.ID},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"code": badge.Code}, update, opts)
	return err
}

// EnsureBadgeIndexes creates necessary indexes for the badges collection.
func EnsureBadgeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
