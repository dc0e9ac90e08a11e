package service

import (
	"context"
	"errors"
	"fittrackr/server/internal/dateutil"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanRequired = errors.New("a subscription plan must be chosen")
	ErrPlanNotFound = errors.New("subscription plan not found")
	ErrUserNotFound = errors.New("user not found")
)

// DowngradeBlockedError is the business-rule rejection raised when an active
// commitment blocks a lateral or downgrade move. It carries the plan the user
// is locked into and the lock-in end date so callers can render
// "you are engaged on <plan> until <date>; you may only upgrade".
type DowngradeBlockedError struct {
	PlanName string
	EndDate  time.Time
}

func (e *DowngradeBlockedError) Error() string {
	return fmt.Sprintf("engaged on %s until %s: only a more expensive plan is allowed", e.PlanName, e.EndDate.Format("2006-01-02"))
}

// PlanChangeResult reports the outcome of a plan-change resolution.
// Engagement is non-nil only when a new engagement was created.
type PlanChangeResult struct {
	Plan              *domain.SubscriptionPlan
	AlreadySubscribed bool
	Engagement        *domain.Engagement
}

// SubscriptionStatus is the read-side view for the subscriptions page.
type SubscriptionStatus struct {
	CurrentPlan      *domain.SubscriptionPlan // nil when the user never subscribed
	ActiveEngagement *domain.Engagement       // nil when no commitment is running
}

// --- Service Interface ---
type SubscriptionService interface {
	ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error)
	Status(ctx context.Context, userID primitive.ObjectID, today time.Time) (*SubscriptionStatus, error)
	ChangePlan(ctx context.Context, userID, planID primitive.ObjectID, today time.Time) (*PlanChangeResult, error)
}

// --- Service Implementation ---

// subscriptionService implements the SubscriptionService interface.
type subscriptionService struct {
	userRepo       repository.UserRepository
	planRepo       repository.PlanRepository
	engagementRepo repository.EngagementRepository

	// Per-user serialization of ChangePlan. Two concurrent plan changes for
	// the same user must not both observe "no active engagement" and both
	// write; unrelated users proceed in parallel. Entries are dropped once
	// the last holder releases, so the map stays bounded by in-flight users.
	locksMu sync.Mutex
	locks   map[primitive.ObjectID]*userLock
}

// userLock is a per-user mutex with a holder count for map eviction.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewSubscriptionService creates a new instance of subscriptionService.
func NewSubscriptionService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	engagementRepo repository.EngagementRepository,
) SubscriptionService {
	return &subscriptionService{
		userRepo:       userRepo,
		planRepo:       planRepo,
		engagementRepo: engagementRepo,
		locks:          make(map[primitive.ObjectID]*userLock),
	}
}

// ListPlans returns the plan catalog ordered by (tierRank, priceMonthly).
func (s *subscriptionService) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	return s.planRepo.List(ctx)
}

// Status resolves the user's current plan and any running engagement.
// The latest active engagement row is authoritative for the current plan; the
// denormalized user pointer is only the fallback when no engagement is active.
func (s *subscriptionService) Status(ctx context.Context, userID primitive.ObjectID, today time.Time) (*SubscriptionStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	status := &SubscriptionStatus{}

	active, err := s.activeEngagement(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	status.ActiveEngagement = active

	currentPlanID := primitive.NilObjectID
	if active != nil {
		currentPlanID = active.PlanID
	} else if user.PlanID != nil {
		currentPlanID = *user.PlanID
	}
	if currentPlanID != primitive.NilObjectID {
		plan, err := s.planRepo.GetByID(ctx, currentPlanID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		status.CurrentPlan = plan
	}

	return status, nil
}

// ChangePlan resolves a plan-change request to one of four outcomes:
//
//  1. no plan chosen            -> ErrPlanRequired
//  2. same plan as current      -> no-op, AlreadySubscribed
//  3. active engagement and the chosen plan is not strictly more expensive
//     -> *DowngradeBlockedError
//  4. otherwise                 -> new engagement + updated plan pointer
//
// The active engagement is recomputed on every call since time advances
// between calls. The engagement insert and the user update are logically one
// transaction: the insert is rolled back if the pointer update fails.
func (s *subscriptionService) ChangePlan(ctx context.Context, userID, planID primitive.ObjectID, today time.Time) (*PlanChangeResult, error) {
	if planID == primitive.NilObjectID {
		return nil, ErrPlanRequired
	}
	today = dateutil.DateOnly(today)

	lock := s.lockUser(userID)
	defer s.unlockUser(userID, lock)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	chosen, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	active, err := s.activeEngagement(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	// Current plan: by identity, active engagement first, pointer as fallback.
	currentPlanID := primitive.NilObjectID
	if active != nil {
		currentPlanID = active.PlanID
	} else if user.PlanID != nil {
		currentPlanID = *user.PlanID
	}

	if currentPlanID == chosen.ID {
		return &PlanChangeResult{Plan: chosen, AlreadySubscribed: true}, nil
	}

	if active != nil {
		activePlan, err := s.planRepo.GetByID(ctx, active.PlanID)
		if err != nil {
			return nil, fmt.Errorf("failed to load engaged plan: %w", err)
		}
		// Strict greater-than required to move: equal-priced lateral moves
		// are blocked just like downgrades.
		if chosen.PriceMonthly <= activePlan.PriceMonthly {
			return nil, &DowngradeBlockedError{
				PlanName: activePlan.Name,
				EndDate:  active.EndDate,
			}
		}
	}

	// Outcome 4: accepted. A zero-commitment plan yields endDate == today and
	// the engagement is never active; it exists purely as history.
	months := chosen.CommitmentMonths
	engagement := &domain.Engagement{
		UserID:           userID,
		PlanID:           chosen.ID,
		StartDate:        today,
		EndDate:          dateutil.AddMonths(today, months),
		CommitmentMonths: months,
	}

	engagementID, err := s.engagementRepo.Create(ctx, engagement)
	if err != nil {
		return nil, err
	}
	engagement.ID = engagementID

	if err := s.userRepo.SetPlan(ctx, userID, &chosen.ID); err != nil {
		// Roll back the half-applied change so the pointer and the history
		// cannot drift.
		if delErr := s.engagementRepo.Delete(ctx, engagementID); delErr != nil {
			return nil, fmt.Errorf("plan pointer update failed (%v) and engagement rollback failed: %w", err, delErr)
		}
		return nil, fmt.Errorf("plan pointer update failed: %w", err)
	}

	return &PlanChangeResult{Plan: chosen, Engagement: engagement}, nil
}

// activeEngagement maps the repository's ErrNotFound to a nil engagement.
func (s *subscriptionService) activeEngagement(ctx context.Context, userID primitive.ObjectID, today time.Time) (*domain.Engagement, error) {
	active, err := s.engagementRepo.GetActiveForUser(ctx, userID, dateutil.DateOnly(today))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return active, nil
}

// lockUser acquires the mutex serializing plan changes for one user,
// registering as a holder first so the entry survives until unlockUser.
func (s *subscriptionService) lockUser(userID primitive.ObjectID) *userLock {
	s.locksMu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &userLock{}
		s.locks[userID] = lock
	}
	lock.refs++
	s.locksMu.Unlock()

	lock.mu.Lock()
	return lock
}

// unlockUser releases the mutex and evicts the map entry when no holder or
// waiter remains.
func (s *subscriptionService) unlockUser(userID primitive.ObjectID, lock *userLock) {
	lock.mu.Unlock()

	s.locksMu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, userID)
	}
	s.locksMu.Unlock()
}
