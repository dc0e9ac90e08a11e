package service

import (
	"context"
	"errors"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrExerciseValidation = errors.New("exercise validation failed")
)

// ExerciseInput carries the fields for creating or editing a library exercise.
type ExerciseInput struct {
	Name          string
	PrimaryMuscle string
	Equipment     string
	Difficulty    string
	Description   string
}

// --- Service Interface ---
type ExerciseService interface {
	Create(ctx context.Context, input ExerciseInput) (*domain.Exercise, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, id primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface. The library is
// shared: reads are open to any authenticated user, writes are restricted
// to coach and admin roles at the API layer.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo}
}

// Create adds an exercise to the library.
func (s *exerciseService) Create(ctx context.Context, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" || input.PrimaryMuscle == "" {
		return nil, ErrExerciseValidation
	}
	exercise := &domain.Exercise{
		Name:          input.Name,
		PrimaryMuscle: input.PrimaryMuscle,
		Equipment:     input.Equipment,
		Difficulty:    input.Difficulty,
		Description:   input.Description,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetByID retrieves a single library exercise.
func (s *exerciseService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// List returns the full exercise library sorted by name.
func (s *exerciseService) List(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx)
}

// Update edits a library exercise.
func (s *exerciseService) Update(ctx context.Context, id primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" || input.PrimaryMuscle == "" {
		return nil, ErrExerciseValidation
	}
	exercise, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exercise.Name = input.Name
	exercise.PrimaryMuscle = input.PrimaryMuscle
	exercise.Equipment = input.Equipment
	exercise.Difficulty = input.Difficulty
	exercise.Description = input.Description

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// Delete removes a library exercise.
func (s *exerciseService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.exerciseRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}
