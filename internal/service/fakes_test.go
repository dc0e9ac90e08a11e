package service

import (
	"context"
	"fittrackr/server/internal/dateutil"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo implementations'
// contracts (ordering, sentinel errors) closely enough for service tests.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User

	setPlanErr error // Injected to exercise rollback paths
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	cp := *user
	cp.ID = id
	r.users[id] = &cp
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SetPlan(ctx context.Context, userID primitive.ObjectID, planID *primitive.ObjectID) error {
	if r.setPlanErr != nil {
		return r.setPlanErr
	}
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PlanID = planID
	return nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string) ([]domain.User, error) {
	q := strings.ToLower(query)
	var out []domain.User
	for _, u := range r.users {
		if query == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(string(u.Role)), q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.SubscriptionPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.SubscriptionPlan)}
}

func (r *fakePlanRepo) add(plan domain.SubscriptionPlan) domain.SubscriptionPlan {
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	r.plans[plan.ID] = &plan
	return plan
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SubscriptionPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlanRepo) GetByCode(ctx context.Context, code string) (*domain.SubscriptionPlan, error) {
	for _, p := range r.plans {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) List(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	var out []domain.SubscriptionPlan
	for _, p := range r.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TierRank != out[j].TierRank {
			return out[i].TierRank < out[j].TierRank
		}
		return out[i].PriceMonthly < out[j].PriceMonthly
	})
	return out, nil
}

func (r *fakePlanRepo) Upsert(ctx context.Context, plan *domain.SubscriptionPlan) error {
	for _, p := range r.plans {
		if p.Code == plan.Code {
			plan.ID = p.ID
			r.plans[p.ID] = plan
			return nil
		}
	}
	r.add(*plan)
	return nil
}

type fakeEngagementRepo struct {
	engagements map[primitive.ObjectID]*domain.Engagement

	createErr error
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{engagements: make(map[primitive.ObjectID]*domain.Engagement)}
}

func (r *fakeEngagementRepo) Create(ctx context.Context, engagement *domain.Engagement) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	cp := *engagement
	cp.ID = id
	r.engagements[id] = &cp
	return id, nil
}

func (r *fakeEngagementRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.engagements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.engagements, id)
	return nil
}

func (r *fakeEngagementRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Engagement, error) {
	var out []domain.Engagement
	for _, e := range r.engagements {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *fakeEngagementRepo) GetActiveForUser(ctx context.Context, userID primitive.ObjectID, today time.Time) (*domain.Engagement, error) {
	var best *domain.Engagement
	for _, e := range r.engagements {
		if e.UserID != userID || e.CommitmentMonths <= 0 || e.EndDate.Before(today) {
			continue
		}
		if best == nil || e.EndDate.After(best.EndDate) {
			best = e
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.Workout)}
}

func (r *fakeWorkoutRepo) add(w domain.Workout) domain.Workout {
	if w.ID == primitive.NilObjectID {
		w.ID = primitive.NewObjectID()
	}
	r.workouts[w.ID] = &w
	return w
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *workout
	cp.ID = id
	r.workouts[id] = &cp
	return id, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkoutRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeWorkoutRepo) GetByUserIDSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error) {
	all, _ := r.GetByUserID(ctx, userID)
	var out []domain.Workout
	for _, w := range all {
		if !dateutil.DateOnly(w.Date).Before(since) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *workout
	r.workouts[workout.ID] = &cp
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeProgramRepo struct {
	programs   map[primitive.ObjectID]*domain.Program
	placements map[primitive.ObjectID]*domain.ProgramExercise
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{
		programs:   make(map[primitive.ObjectID]*domain.Program),
		placements: make(map[primitive.ObjectID]*domain.ProgramExercise),
	}
}

func (r *fakeProgramRepo) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *program
	cp.ID = id
	r.programs[id] = &cp
	return id, nil
}

func (r *fakeProgramRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProgramRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Program, error) {
	var out []domain.Program
	for _, p := range r.programs {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) Update(ctx context.Context, program *domain.Program) error {
	if _, ok := r.programs[program.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *program
	r.programs[program.ID] = &cp
	return nil
}

func (r *fakeProgramRepo) Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error {
	p, ok := r.programs[id]
	if !ok || p.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.programs, id)
	for peID, pe := range r.placements {
		if pe.ProgramID == id {
			delete(r.placements, peID)
		}
	}
	return nil
}

func (r *fakeProgramRepo) AddExercise(ctx context.Context, pe *domain.ProgramExercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *pe
	cp.ID = id
	r.placements[id] = &cp
	return id, nil
}

func (r *fakeProgramRepo) GetExercises(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramExercise, error) {
	var out []domain.ProgramExercise
	for _, pe := range r.placements {
		if pe.ProgramID == programID {
			out = append(out, *pe)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayIndex != out[j].DayIndex {
			return out[i].DayIndex < out[j].DayIndex
		}
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *exercise
	cp.ID = id
	r.exercises[id] = &cp
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, e := range r.exercises {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *exercise
	r.exercises[exercise.ID] = &cp
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

type fakeProductRepo struct {
	products map[primitive.ObjectID]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]*domain.Product)}
}

func (r *fakeProductRepo) add(p domain.Product) domain.Product {
	if p.ID == primitive.NilObjectID {
		p.ID = primitive.NewObjectID()
	}
	r.products[p.ID] = &p
	return p
}

func (r *fakeProductRepo) Create(ctx context.Context, product *domain.Product) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *product
	cp.ID = id
	r.products[id] = &cp
	return id, nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.StockQty < qty {
		return repository.ErrUpdateFailed
	}
	p.StockQty -= qty
	return nil
}

func (r *fakeProductRepo) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.StockQty += qty
	return nil
}

type fakeCartRepo struct {
	items map[primitive.ObjectID]*domain.CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[primitive.ObjectID]*domain.CartItem)}
}

func (r *fakeCartRepo) AddItem(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error) {
	for _, item := range r.items {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity++
			cp := *item
			return &cp, nil
		}
	}
	item := &domain.CartItem{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
		AddedAt:   time.Now(),
	}
	r.items[item.ID] = item
	cp := *item
	return &cp, nil
}

func (r *fakeCartRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	for id, item := range r.items {
		if item.UserID == userID && item.ProductID == productID {
			delete(r.items, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCartRepo) Clear(ctx context.Context, userID primitive.ObjectID) error {
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}

type fakeOrderRepo struct {
	orders map[primitive.ObjectID]*domain.Order

	createErr error // Injected failure for the next Create
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[primitive.ObjectID]*domain.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	cp := *order
	cp.ID = id
	r.orders[id] = &cp
	return id, nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeGoalRepo struct {
	goals map[primitive.ObjectID]*domain.Goal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[primitive.ObjectID]*domain.Goal)}
}

func (r *fakeGoalRepo) Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *goal
	cp.ID = id
	r.goals[id] = &cp
	return id, nil
}

func (r *fakeGoalRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

// fakeFileStorage records delete calls and returns deterministic URLs.
type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}
