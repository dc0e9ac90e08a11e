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

const orderCollectionName = "orders"

// mongoOrderRepository implements repository.OrderRepository.
type mongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new order repository.
func NewMongoOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection(orderCollectionName),
	}
}

// Create inserts a new order with its embedded items and payment.
func (r *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) (primitive.ObjectID, error) {
	if order.UserID == primitive.NilObjectID || len(order.Items) == 0 {
		return primitive.NilObjectID, errors.New("order requires userId and at least one item")
	}
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted order ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single order.
func (r *mongoOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetByUserID retrieves a user's orders, newest first.
func (r *mongoOrderRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// EnsureOrderIndexes creates necessary indexes for the orders collection.
func EnsureOrderIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "payment.reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
