package service

import (
	"context"
	"errors"
	"fittrackr/server/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type subscriptionFixture struct {
	users       *fakeUserRepo
	plans       *fakePlanRepo
	engagements *fakeEngagementRepo
	svc         SubscriptionService

	member    primitive.ObjectID
	essential domain.SubscriptionPlan
	plus      domain.SubscriptionPlan
	premium   domain.SubscriptionPlan
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	f := &subscriptionFixture{
		users:       newFakeUserRepo(),
		plans:       newFakePlanRepo(),
		engagements: newFakeEngagementRepo(),
	}
	f.svc = NewSubscriptionService(f.users, f.plans, f.engagements)

	f.essential = f.plans.add(domain.SubscriptionPlan{
		Name: "Essential", Code: "essential", PriceMonthly: 19.90, TierRank: 1, CommitmentMonths: 0,
	})
	f.plus = f.plans.add(domain.SubscriptionPlan{
		Name: "Plus", Code: "plus", PriceMonthly: 29.90, TierRank: 2, CommitmentMonths: 3,
	})
	f.premium = f.plans.add(domain.SubscriptionPlan{
		Name: "Premium", Code: "premium", PriceMonthly: 39.90, TierRank: 3, CommitmentMonths: 12,
	})

	id, err := f.users.Create(context.Background(), &domain.User{
		Name: "Mara", Email: "mara@example.com", Role: domain.RoleMember,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.member = id
	return f
}

func TestChangePlanRequiresPlan(t *testing.T) {
	f := newSubscriptionFixture(t)

	_, err := f.svc.ChangePlan(context.Background(), f.member, primitive.NilObjectID, date(2024, 3, 15))
	if !errors.Is(err, ErrPlanRequired) {
		t.Fatalf("got %v, want ErrPlanRequired", err)
	}
}

func TestChangePlanUnknownPlan(t *testing.T) {
	f := newSubscriptionFixture(t)

	_, err := f.svc.ChangePlan(context.Background(), f.member, primitive.NewObjectID(), date(2024, 3, 15))
	if !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("got %v, want ErrPlanNotFound", err)
	}
}

func TestChangePlanCreatesEngagement(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	result, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today)
	if err != nil {
		t.Fatalf("ChangePlan: %v", err)
	}
	if result.AlreadySubscribed {
		t.Fatal("unexpected AlreadySubscribed")
	}
	if result.Engagement == nil {
		t.Fatal("expected a new engagement")
	}

	want := domain.Engagement{
		ID:               result.Engagement.ID,
		UserID:           f.member,
		PlanID:           f.plus.ID,
		StartDate:        date(2024, 3, 15),
		EndDate:          date(2024, 6, 15), // 3 month commitment
		CommitmentMonths: 3,
	}
	if diff := cmp.Diff(want, *result.Engagement); diff != "" {
		t.Errorf("engagement mismatch (-want +got):\n%s", diff)
	}

	user, _ := f.users.GetByID(context.Background(), f.member)
	if user.PlanID == nil || *user.PlanID != f.plus.ID {
		t.Errorf("plan pointer not updated, got %v", user.PlanID)
	}
}

func TestChangePlanMonthEndClamp(t *testing.T) {
	f := newSubscriptionFixture(t)

	// Nov 30 + 3 months lands on the nonexistent Feb 30; the end date
	// clamps to the last day of February (leap year).
	result, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, date(2023, 11, 30))
	if err != nil {
		t.Fatalf("ChangePlan: %v", err)
	}
	if got, want := result.Engagement.EndDate, date(2024, 2, 29); !got.Equal(want) {
		t.Errorf("end date = %s, want %s", got, want)
	}
}

func TestChangePlanSamePlanIsNoOp(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	if _, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today); err != nil {
		t.Fatalf("first ChangePlan: %v", err)
	}

	result, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("second ChangePlan: %v", err)
	}
	if !result.AlreadySubscribed {
		t.Fatal("expected AlreadySubscribed")
	}
	if result.Engagement != nil {
		t.Fatal("no-op must not create an engagement")
	}
	if got := len(f.engagements.engagements); got != 1 {
		t.Errorf("engagement count = %d, want 1", got)
	}
}

func TestChangePlanDowngradeBlocked(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	if _, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_, err := f.svc.ChangePlan(context.Background(), f.member, f.essential.ID, today.AddDate(0, 0, 30))
	var blocked *DowngradeBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("got %v, want DowngradeBlockedError", err)
	}
	if blocked.PlanName != "Plus" {
		t.Errorf("blocking plan = %q, want Plus", blocked.PlanName)
	}
	if want := date(2024, 6, 15); !blocked.EndDate.Equal(want) {
		t.Errorf("blocking end date = %s, want %s", blocked.EndDate, want)
	}
}

func TestChangePlanEqualPriceBlocked(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	// Lateral moves are blocked just like downgrades: the comparison is
	// strictly greater-than on price.
	rival := f.plans.add(domain.SubscriptionPlan{
		Name: "Plus Annual", Code: "plus-annual", PriceMonthly: 29.90, TierRank: 2, CommitmentMonths: 12,
	})

	if _, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_, err := f.svc.ChangePlan(context.Background(), f.member, rival.ID, today.AddDate(0, 0, 1))
	var blocked *DowngradeBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("got %v, want DowngradeBlockedError", err)
	}
}

func TestChangePlanUpgradeAllowedDuringCommitment(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	if _, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	result, err := f.svc.ChangePlan(context.Background(), f.member, f.premium.ID, today.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if result.Engagement == nil || result.Engagement.PlanID != f.premium.ID {
		t.Fatal("expected a premium engagement")
	}
	// The old engagement is superseded, never deleted.
	if got := len(f.engagements.engagements); got != 2 {
		t.Errorf("engagement count = %d, want 2", got)
	}
}

func TestChangePlanZeroCommitmentNeverLocks(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	result, err := f.svc.ChangePlan(context.Background(), f.member, f.essential.ID, today)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !result.Engagement.EndDate.Equal(today) {
		t.Errorf("zero-commitment end date = %s, want %s", result.Engagement.EndDate, today)
	}

	// The zero-commitment engagement never blocks: switching to a cheaper
	// hypothetical plan the very same day must succeed.
	cheaper := f.plans.add(domain.SubscriptionPlan{
		Name: "Off-Peak", Code: "offpeak", PriceMonthly: 9.90, TierRank: 0, CommitmentMonths: 0,
	})
	if _, err := f.svc.ChangePlan(context.Background(), f.member, cheaper.ID, today); err != nil {
		t.Fatalf("switch off zero-commitment plan: %v", err)
	}
}

func TestChangePlanExpiredEngagementDoesNotBlock(t *testing.T) {
	f := newSubscriptionFixture(t)

	if _, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, date(2024, 1, 1)); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Commitment ran out on 2024-04-01; a downgrade the day after is free.
	result, err := f.svc.ChangePlan(context.Background(), f.member, f.essential.ID, date(2024, 4, 2))
	if err != nil {
		t.Fatalf("downgrade after expiry: %v", err)
	}
	if result.Engagement == nil || result.Engagement.PlanID != f.essential.ID {
		t.Fatal("expected an essential engagement")
	}
}

func TestChangePlanRollsBackOnPointerFailure(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.users.setPlanErr = errors.New("write concern failure")

	_, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, date(2024, 3, 15))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(f.engagements.engagements); got != 0 {
		t.Errorf("engagement count after rollback = %d, want 0", got)
	}
}

func TestChangePlanSerializesPerUser(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today)
		}()
	}
	wg.Wait()

	// Exactly one engagement must win; the rest observe AlreadySubscribed.
	if got := len(f.engagements.engagements); got != 1 {
		t.Errorf("engagement count = %d, want 1", got)
	}
}

func TestChangePlanEvictsUserLocks(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	other, err := f.users.Create(context.Background(), &domain.User{
		Name: "Noor", Email: "noor@example.com", Role: domain.RoleMember,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		userID := f.member
		if i%2 == 0 {
			userID = other
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.ChangePlan(context.Background(), userID, f.plus.ID, today)
		}()
	}
	wg.Wait()

	// Once every call has released, no per-user entry may linger.
	impl := f.svc.(*subscriptionService)
	impl.locksMu.Lock()
	remaining := len(impl.locks)
	impl.locksMu.Unlock()
	if remaining != 0 {
		t.Errorf("lock map holds %d entries after all calls returned, want 0", remaining)
	}
}

func TestStatusPrefersActiveEngagement(t *testing.T) {
	f := newSubscriptionFixture(t)
	today := date(2024, 3, 15)

	if _, err := f.svc.ChangePlan(context.Background(), f.member, f.plus.ID, today); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Pointer drifts (say, an admin edit); the engagement stays authoritative.
	if err := f.users.SetPlan(context.Background(), f.member, &f.essential.ID); err != nil {
		t.Fatalf("drift pointer: %v", err)
	}

	status, err := f.svc.Status(context.Background(), f.member, today.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CurrentPlan == nil || status.CurrentPlan.ID != f.plus.ID {
		t.Errorf("current plan = %+v, want Plus", status.CurrentPlan)
	}
	if status.ActiveEngagement == nil {
		t.Error("expected an active engagement")
	}
}

func TestStatusFallsBackToPointer(t *testing.T) {
	f := newSubscriptionFixture(t)

	if err := f.users.SetPlan(context.Background(), f.member, &f.essential.ID); err != nil {
		t.Fatalf("set pointer: %v", err)
	}

	status, err := f.svc.Status(context.Background(), f.member, date(2024, 3, 15))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CurrentPlan == nil || status.CurrentPlan.ID != f.essential.ID {
		t.Errorf("current plan = %+v, want Essential", status.CurrentPlan)
	}
	if status.ActiveEngagement != nil {
		t.Error("expected no active engagement")
	}
}

func TestListPlansOrdered(t *testing.T) {
	f := newSubscriptionFixture(t)

	plans, err := f.svc.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	var codes []string
	for _, p := range plans {
		codes = append(codes, p.Code)
	}
	want := []string{"essential", "plus", "premium"}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("plan order mismatch (-want +got):\n%s", diff)
	}
}
