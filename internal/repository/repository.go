package repository

import (
	"context"
	"fittrackr/server/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetPlan(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID) error
	Search(ctx context.Context, query string) ([]domain.User, error) // Admin listing; empty query returns all
	Count(ctx context.Context) (int64, error)
}

// PlanRepository provides read access to the subscription plan catalog.
// Plans are immutable reference data seeded out of band (see cmd/fitctl).
type PlanRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SubscriptionPlan, error)
	GetByCode(ctx context.Context, code string) (*domain.SubscriptionPlan, error)
	List(ctx context.Context) ([]domain.SubscriptionPlan, error) // Ordered by (tierRank, priceMonthly)
	Upsert(ctx context.Context, plan *domain.SubscriptionPlan) error
}

// EngagementRepository defines the interface for the append-only engagement history.
type EngagementRepository interface {
	Create(ctx context.Context, engagement *domain.Engagement) (primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error // Compensation only: roll back a half-applied plan change
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Engagement, error)
	// GetActiveForUser returns the most recent engagement with
	// commitmentMonths > 0 and endDate >= today, or ErrNotFound.
	GetActiveForUser(ctx context.Context, userID primitive.ObjectID, today time.Time) (*domain.Engagement, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) // Ordered by date ascending
	GetByUserIDSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error // Ensure user owns the workout
}

// ExerciseRepository defines the interface for the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgramRepository defines the interface for programs and their exercises.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
	Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error

	AddExercise(ctx context.Context, pe *domain.ProgramExercise) (primitive.ObjectID, error)
	GetExercises(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramExercise, error) // Ordered by (dayIndex, orderIndex)
}

// GoalRepository defines the interface for user goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error)
}

// BadgeRepository provides read access to the badge catalog.
type BadgeRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Badge, error)
	List(ctx context.Context) ([]domain.Badge, error)
	Upsert(ctx context.Context, badge *domain.Badge) error
}

// ProductRepository defines the interface for shop products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error // Fails with ErrUpdateFailed when stock would go negative
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error // Compensation only: return stock taken by a failed checkout
}

// CartRepository defines the interface for cart items.
type CartRepository interface {
	AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error) // Increments quantity on duplicate
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// OrderRepository defines the interface for completed orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) // Newest first
}
