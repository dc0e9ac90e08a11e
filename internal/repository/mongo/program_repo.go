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

const (
	programCollectionName         = "programs"
	programExerciseCollectionName = "program_exercises"
)

// mongoProgramRepository implements repository.ProgramRepository. Programs and
// their exercise placements live in two collections; placements are small and
// always fetched per program.
type mongoProgramRepository struct {
	programs  *mongo.Collection
	exercises *mongo.Collection
}

// NewMongoProgramRepository creates a new program repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		programs:  db.Collection(programCollectionName),
		exercises: db.Collection(programExerciseCollectionName),
	}
}

// Create inserts a new program.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.OwnerID == primitive.NilObjectID || program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires ownerId and name")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	result, err := r.programs.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single program.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	var program domain.Program
	err := r.programs.FindOne(ctx, bson.M{"_id": id}).Decode(&program)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// GetByOwnerID retrieves all programs created by a user, newest first.
func (r *mongoProgramRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Program, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.programs.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var programs []domain.Program
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// Update replaces the mutable fields of a program.
func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"name":        program.Name,
			"description": program.Description,
			"level":       program.Level,
			"goalType":    program.GoalType,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.programs.UpdateOne(ctx, bson.M{"_id": program.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a program and its exercise placements. The ownerID is part
// of the filter so users can only delete their own programs.
func (r *mongoProgramRepository) Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error {
	result, err := r.programs.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	// Orphaned placements are useless; best-effort cleanup.
	_, _ = r.exercises.DeleteMany(ctx, bson.M{"programId": id})
	return nil
}

// AddExercise places an exercise inside a program.
func (r *mongoProgramRepository) AddExercise(ctx context.Context, pe *domain.ProgramExercise) (primitive.ObjectID, error) {
	if pe.ProgramID == primitive.NilObjectID || pe.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("program exercise requires programId and exerciseId")
	}
	pe.ID = primitive.NewObjectID()

	result, err := r.exercises.InsertOne(ctx, pe)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program exercise ID")
	}
	return insertedID, nil
}

// GetExercises returns a program's placements ordered by (dayIndex, orderIndex).
func (r *mongoProgramRepository) GetExercises(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramExercise, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "dayIndex", Value: 1},
		{Key: "orderIndex", Value: 1},
	})
	cursor, err := r.exercises.Find(ctx, bson.M{"programId": programID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var placements []domain.ProgramExercise
	if err = cursor.All(ctx, &placements); err != nil {
		return nil, err
	}
	return placements, nil
}

// EnsureProgramIndexes creates necessary indexes for the program collections.
func EnsureProgramIndexes(ctx context.Context, programs, programExercises *mongo.Collection) {
	_, _ = programs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
	})
	_, _ = programExercises.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "programId", Value: 1},
			{Key: "dayIndex", Value: 1},
			{Key: "orderIndex", Value: 1},
		}},
	})
}
