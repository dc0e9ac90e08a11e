package service

import (
	"context"
	"errors"
	"fittrackr/server/internal/dateutil"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("workout does not belong to this user")
	ErrWorkoutValidation   = errors.New("workout validation failed")
	ErrProgramNotFound     = errors.New("program not found")
)

// WorkoutInput carries the fields for creating or editing a workout.
type WorkoutInput struct {
	Date            time.Time
	Title           string
	WorkoutType     string
	Notes           string
	DurationMinutes int
	ProgramID       *primitive.ObjectID
	Sets            []domain.WorkoutSet
}

// WorkoutListing splits a user's workouts around today for display.
type WorkoutListing struct {
	Past     []domain.Workout // Newest first
	Upcoming []domain.Workout // Soonest first
}

// --- Service Interface ---
type WorkoutService interface {
	Create(ctx context.Context, userID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error)
	GetByID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	List(ctx context.Context, userID primitive.ObjectID, today time.Time) (*WorkoutListing, error)
	Journal(ctx context.Context, userID primitive.ObjectID, typeFilter string) ([]domain.Workout, error)
	Update(ctx context.Context, userID, workoutID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error)
	Delete(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

// --- Service Implementation ---

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	programRepo repository.ProgramRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, programRepo repository.ProgramRepository) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		programRepo: programRepo,
	}
}

// Create logs a new workout. When the input references a program, the
// workout's sets are prefilled from the program's targets: one set per
// placement, set number 1, matching what the member would then adjust.
func (s *workoutService) Create(ctx context.Context, userID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error) {
	if input.Title == "" || input.Date.IsZero() {
		return nil, ErrWorkoutValidation
	}
	if input.DurationMinutes < 0 {
		return nil, ErrWorkoutValidation
	}

	workout := &domain.Workout{
		UserID:          userID,
		ProgramID:       input.ProgramID,
		Date:            dateutil.DateOnly(input.Date),
		Title:           input.Title,
		WorkoutType:     input.WorkoutType,
		Notes:           input.Notes,
		DurationMinutes: input.DurationMinutes,
		Sets:            input.Sets,
	}
	if workout.WorkoutType == "" {
		workout.WorkoutType = "General"
	}

	if input.ProgramID != nil && len(input.Sets) == 0 {
		prefilled, err := s.prefillFromProgram(ctx, userID, *input.ProgramID)
		if err != nil {
			return nil, err
		}
		workout.Sets = prefilled
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID
	return workout, nil
}

// GetByID retrieves a workout and verifies ownership.
func (s *workoutService) GetByID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

// List splits the user's workouts into past and upcoming sessions.
func (s *workoutService) List(ctx context.Context, userID primitive.ObjectID, today time.Time) (*WorkoutListing, error) {
	today = dateutil.DateOnly(today)
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	listing := &WorkoutListing{}
	for _, w := range workouts {
		if dateutil.DateOnly(w.Date).Before(today) {
			listing.Past = append(listing.Past, w)
		} else {
			listing.Upcoming = append(listing.Upcoming, w)
		}
	}
	// Repository order is oldest first: upcoming is already soonest first,
	// past needs reversing to show the most recent session on top.
	for i, j := 0, len(listing.Past)-1; i < j; i, j = i+1, j-1 {
		listing.Past[i], listing.Past[j] = listing.Past[j], listing.Past[i]
	}
	return listing, nil
}

// Journal lists the user's workouts, optionally filtered by workout type
// (case-insensitive exact match).
func (s *workoutService) Journal(ctx context.Context, userID primitive.ObjectID, typeFilter string) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if typeFilter == "" {
		return workouts, nil
	}

	filtered := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if strings.EqualFold(w.WorkoutType, typeFilter) {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

// Update edits an existing workout after verifying ownership.
func (s *workoutService) Update(ctx context.Context, userID, workoutID primitive.ObjectID, input WorkoutInput) (*domain.Workout, error) {
	if input.Title == "" || input.Date.IsZero() || input.DurationMinutes < 0 {
		return nil, ErrWorkoutValidation
	}

	workout, err := s.GetByID(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	workout.ProgramID = input.ProgramID
	workout.Date = dateutil.DateOnly(input.Date)
	workout.Title = input.Title
	workout.WorkoutType = input.WorkoutType
	workout.Notes = input.Notes
	workout.DurationMinutes = input.DurationMinutes
	workout.Sets = input.Sets

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// Delete removes a workout. The repository filter enforces ownership.
func (s *workoutService) Delete(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// prefillFromProgram builds the initial set list from a program's targets.
// The program must belong to the user creating the workout.
func (s *workoutService) prefillFromProgram(ctx context.Context, userID, programID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.OwnerID != userID {
		return nil, ErrProgramNotFound
	}

	placements, err := s.programRepo.GetExercises(ctx, programID)
	if err != nil {
		return nil, err
	}

	sets := make([]domain.WorkoutSet, 0, len(placements))
	for _, pe := range placements {
		sets = append(sets, domain.WorkoutSet{
			ExerciseID: pe.ExerciseID,
			SetNumber:  1,
			Reps:       pe.TargetReps,
			WeightKg:   pe.TargetWeightKg,
		})
	}
	return sets, nil
}
