package mongo

import (
	"context"
	"errors"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const engagementCollectionName = "engagements"

// mongoEngagementRepository implements repository.EngagementRepository.
type mongoEngagementRepository struct {
	collection *mongo.Collection
}

// NewMongoEngagementRepository creates a new engagement repository.
func NewMongoEngagementRepository(db *mongo.Database) repository.EngagementRepository {
	return &mongoEngagementRepository{
		collection: db.Collection(engagementCollectionName),
	}
}

// Create inserts a new engagement record.
func (r *mongoEngagementRepository) Create(ctx context.Context, engagement *domain.Engagement) (primitive.ObjectID, error) {
	if engagement.UserID == primitive.NilObjectID || engagement.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("engagement requires userId and planId")
	}
	engagement.ID = primitive.NewObjectID()
	engagement.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, engagement)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted engagement ID")
	}
	return insertedID, nil
}

// Delete removes an engagement row. The history is append-only from the
// business point of view; this exists solely so the resolver can roll back
// the engagement insert when the paired user update fails.
func (r *mongoEngagementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByUserID returns a user's full engagement history, most recent end date first.
func (r *mongoEngagementRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Engagement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "endDate", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var engagements []domain.Engagement
	if err = cursor.All(ctx, &engagements); err != nil {
		return nil, err
	}
	return engagements, nil
}

// GetActiveForUser returns the most recent engagement that still locks the
// user in on the given day: commitmentMonths > 0 and endDate >= today, ordered
// by end date descending. Recomputed on every call, never cached, since time
// advances between calls.
func (r *mongoEngagementRepository) GetActiveForUser(ctx context.Context, userID primitive.ObjectID, today time.Time) (*domain.Engagement, error) {
	filter := bson.M{
		"userId":           userID,
		"commitmentMonths": bson.M{"$gt": 0},
		"endDate":          bson.M{"$gte": today},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "endDate", Value: -1}})

	var engagement domain.Engagement
	err := r.collection.FindOne(ctx, filter, opts).Decode(&engagement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &engagement, nil
}

// EnsureEngagementIndexes creates necessary indexes for the engagements collection.
func EnsureEngagementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Serves the active-engagement lookup: filter on user, sort by end date.
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "endDate", Value: -1},
			},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
