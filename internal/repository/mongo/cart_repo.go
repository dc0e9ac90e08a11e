package mongo

import (
	"context"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartCollectionName = "cart_items"

// mongoCartRepository implements repository.CartRepository.
type mongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository creates a new cart repository.
func NewMongoCartRepository(db *mongo.Database) repository.CartRepository {
	return &mongoCartRepository{
		collection: db.Collection(cartCollectionName),
	}
}

// AddItem upserts a cart line for (user, product): a fresh add creates the
// line with quantity 1, adding the same product again increments it.
func (r *mongoCartRepository) AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error) {
	filter := bson.M{"userId": userID, "productId": productID}
	update := bson.M{
		"$inc": bson.M{"quantity": 1},
		"$setOnInsert": bson.M{
			"_id":     primitive.NewObjectID(),
			"addedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var item domain.CartItem
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByUserID retrieves a user's cart, oldest line first.
func (r *mongoCartRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.CartItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem deletes one product line from a user's cart.
func (r *mongoCartRepository) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "productId": productID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Clear empties a user's cart (called after a successful checkout).
func (r *mongoCartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureCartIndexes creates necessary indexes for the cart collection.
func EnsureCartIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "productId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
