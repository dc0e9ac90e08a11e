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
	ErrProfileValidation = errors.New("profile validation failed")
)

// Minimum age accepted at onboarding.
const minAge = 16

// OnboardingInput carries the profile fields collected after signup plus the
// optional initial goal.
type OnboardingInput struct {
	Age        int
	WeightKg   int
	HeightCm   int
	GoalType   string   // Empty: no goal created
	WeightGoal *float64 // Target body weight, when the goal is weight-related
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name     string
	Age      *int
	WeightKg *int
	HeightCm *int
}

// AdminUserUpdate carries the fields an admin may change on any account.
type AdminUserUpdate struct {
	Name   string
	Role   domain.Role
	PlanID *primitive.ObjectID
}

// AdminUserListing is the admin users page: matches plus counts.
type AdminUserListing struct {
	Users        []domain.User
	TotalCount   int64
	ResultsCount int
}

// --- Service Interface ---
type UserService interface {
	CompleteOnboarding(ctx context.Context, userID primitive.ObjectID, input OnboardingInput) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*domain.User, error)
	GetGoals(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error)

	// Admin surface
	SearchUsers(ctx context.Context, query string) (*AdminUserListing, error)
	AdminUpdateUser(ctx context.Context, targetID primitive.ObjectID, update AdminUserUpdate) (*domain.User, error)
}

// --- Service Implementation ---

// userService implements the UserService interface.
type userService struct {
	userRepo repository.UserRepository
	goalRepo repository.GoalRepository
	planRepo repository.PlanRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, goalRepo repository.GoalRepository, planRepo repository.PlanRepository) UserService {
	return &userService{
		userRepo: userRepo,
		goalRepo: goalRepo,
		planRepo: planRepo,
	}
}

// CompleteOnboarding stores the profile fields and, when a goal type was
// chosen, records the initial goal alongside.
func (s *userService) CompleteOnboarding(ctx context.Context, userID primitive.ObjectID, input OnboardingInput) (*domain.User, error) {
	if input.Age < minAge || input.WeightKg <= 0 || input.HeightCm <= 0 {
		return nil, ErrProfileValidation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Age = &input.Age
	user.WeightKg = &input.WeightKg
	user.HeightCm = &input.HeightCm
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.GoalType != "" {
		goal := &domain.Goal{
			UserID:     userID,
			GoalType:   input.GoalType,
			Status:     domain.GoalStatusPending,
			WeightGoal: input.WeightGoal,
		}
		// The target value mirrors the weight goal when one was given.
		if input.WeightGoal != nil {
			goal.TargetValue = *input.WeightGoal
			goal.Unit = "kg"
		}
		if _, err := s.goalRepo.Create(ctx, goal); err != nil {
			return nil, err
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies the editable profile fields.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*domain.User, error) {
	if update.Age != nil && *update.Age < minAge {
		return nil, ErrProfileValidation
	}
	if (update.WeightKg != nil && *update.WeightKg <= 0) || (update.HeightCm != nil && *update.HeightCm <= 0) {
		return nil, ErrProfileValidation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Age != nil {
		user.Age = update.Age
	}
	if update.WeightKg != nil {
		user.WeightKg = update.WeightKg
	}
	if update.HeightCm != nil {
		user.HeightCm = update.HeightCm
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetGoals returns the user's goals, newest first.
func (s *userService) GetGoals(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error) {
	return s.goalRepo.GetByUserID(ctx, userID)
}

// SearchUsers lists accounts matching the query (name, email or role),
// with the total account count for the admin page header.
func (s *userService) SearchUsers(ctx context.Context, query string) (*AdminUserListing, error) {
	users, err := s.userRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return &AdminUserListing{
		Users:        users,
		TotalCount:   total,
		ResultsCount: len(users),
	}, nil
}

// AdminUpdateUser applies an admin edit to any account: display name, role
// and the current-plan pointer.
func (s *userService) AdminUpdateUser(ctx context.Context, targetID primitive.ObjectID, update AdminUserUpdate) (*domain.User, error) {
	switch update.Role {
	case domain.RoleMember, domain.RoleCoach, domain.RoleAdmin:
	default:
		return nil, ErrProfileValidation
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Reject a dangling plan pointer outright.
	if update.PlanID != nil {
		if _, err := s.planRepo.GetByID(ctx, *update.PlanID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	user.Role = update.Role
	user.PlanID = update.PlanID

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
