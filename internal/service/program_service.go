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
	ErrProgramAccessDenied = errors.New("program does not belong to this user")
	ErrProgramValidation   = errors.New("program validation failed")
)

// ProgramInput carries the fields for creating or editing a program.
type ProgramInput struct {
	Name        string
	Description string
	Level       string
	GoalType    string
}

// ProgramExerciseInput places an exercise into a program.
type ProgramExerciseInput struct {
	ExerciseID     primitive.ObjectID
	DayIndex       int
	OrderIndex     int
	TargetSets     int
	TargetReps     int
	TargetWeightKg float64
}

// ProgramDetail bundles a program with its ordered exercise placements.
type ProgramDetail struct {
	Program   *domain.Program
	Exercises []domain.ProgramExercise
}

// --- Service Interface ---
type ProgramService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, input ProgramInput) (*domain.Program, error)
	GetByID(ctx context.Context, ownerID, programID primitive.ObjectID) (*ProgramDetail, error)
	List(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Program, error)
	Update(ctx context.Context, ownerID, programID primitive.ObjectID, input ProgramInput) (*domain.Program, error)
	Delete(ctx context.Context, ownerID, programID primitive.ObjectID) error
	AddExercise(ctx context.Context, ownerID, programID primitive.ObjectID, input ProgramExerciseInput) (*domain.ProgramExercise, error)
}

// --- Service Implementation ---

// programService implements the ProgramService interface.
type programService struct {
	programRepo  repository.ProgramRepository
	exerciseRepo repository.ExerciseRepository
}

// NewProgramService creates a new instance of programService.
func NewProgramService(programRepo repository.ProgramRepository, exerciseRepo repository.ExerciseRepository) ProgramService {
	return &programService{
		programRepo:  programRepo,
		exerciseRepo: exerciseRepo,
	}
}

// Create makes a new empty program owned by the user.
func (s *programService) Create(ctx context.Context, ownerID primitive.ObjectID, input ProgramInput) (*domain.Program, error) {
	if input.Name == "" {
		return nil, ErrProgramValidation
	}
	program := &domain.Program{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Level:       input.Level,
		GoalType:    input.GoalType,
	}
	programID, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = programID
	return program, nil
}

// GetByID retrieves a program with its placements, verifying ownership.
func (s *programService) GetByID(ctx context.Context, ownerID, programID primitive.ObjectID) (*ProgramDetail, error) {
	program, err := s.getOwned(ctx, ownerID, programID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.programRepo.GetExercises(ctx, programID)
	if err != nil {
		return nil, err
	}
	return &ProgramDetail{Program: program, Exercises: exercises}, nil
}

// List returns all programs owned by the user.
func (s *programService) List(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Program, error) {
	return s.programRepo.GetByOwnerID(ctx, ownerID)
}

// Update edits a program's metadata after verifying ownership.
func (s *programService) Update(ctx context.Context, ownerID, programID primitive.ObjectID, input ProgramInput) (*domain.Program, error) {
	if input.Name == "" {
		return nil, ErrProgramValidation
	}
	program, err := s.getOwned(ctx, ownerID, programID)
	if err != nil {
		return nil, err
	}

	program.Name = input.Name
	program.Description = input.Description
	program.Level = input.Level
	program.GoalType = input.GoalType

	if err := s.programRepo.Update(ctx, program); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// Delete removes a program and its placements. The repository filter
// enforces ownership.
func (s *programService) Delete(ctx context.Context, ownerID, programID primitive.ObjectID) error {
	err := s.programRepo.Delete(ctx, programID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	return nil
}

// AddExercise places an exercise into the user's program. The exercise
// must exist in the library.
func (s *programService) AddExercise(ctx context.Context, ownerID, programID primitive.ObjectID, input ProgramExerciseInput) (*domain.ProgramExercise, error) {
	if input.TargetSets < 0 || input.TargetReps < 0 || input.TargetWeightKg < 0 {
		return nil, ErrProgramValidation
	}
	if _, err := s.getOwned(ctx, ownerID, programID); err != nil {
		return nil, err
	}
	if _, err := s.exerciseRepo.GetByID(ctx, input.ExerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	pe := &domain.ProgramExercise{
		ProgramID:      programID,
		ExerciseID:     input.ExerciseID,
		DayIndex:       input.DayIndex,
		OrderIndex:     input.OrderIndex,
		TargetSets:     input.TargetSets,
		TargetReps:     input.TargetReps,
		TargetWeightKg: input.TargetWeightKg,
	}
	peID, err := s.programRepo.AddExercise(ctx, pe)
	if err != nil {
		return nil, err
	}
	pe.ID = peID
	return pe, nil
}

// getOwned loads a program and verifies the caller owns it.
func (s *programService) getOwned(ctx context.Context, ownerID, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.OwnerID != ownerID {
		return nil, ErrProgramAccessDenied
	}
	return program, nil
}
