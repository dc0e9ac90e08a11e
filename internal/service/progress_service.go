package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fittrackr/server/internal/dateutil"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Badge thresholds: at least regularityMinSessions sessions in every lookback
// week, and volumeMinMinutes cumulative minutes across the lookback.
const (
	DefaultWindowCount    = 4
	regularityMinSessions = 3
	volumeMinMinutes      = 300 // 5 hours
)

// WeeklySummary is the dashboard's current-week recap.
type WeeklySummary struct {
	WeekStart    time.Time `json:"weekStart"`
	Sessions     int       `json:"sessions"`
	TotalMinutes int       `json:"totalMinutes"`
}

// --- Service Interface ---
type ProgressService interface {
	// AggregateRecent buckets the user's workouts into windowCount fixed
	// 7-day windows ending today, oldest first.
	AggregateRecent(ctx context.Context, userID primitive.ObjectID, today time.Time, windowCount int) ([]domain.WeeklyBucket, error)
	// AggregateHistory walks from the user's first workout date to their last
	// in 7-day strides. A user with no workouts yields an empty sequence.
	AggregateHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.WeeklyBucket, error)
	// EvaluateBadges derives badge eligibility from the lookback buckets.
	// Pure: no persistence, no side effects.
	EvaluateBadges(buckets []domain.WeeklyBucket) domain.BadgeFlags
	// Badges is the convenience composition of AggregateRecent and
	// EvaluateBadges over the default lookback.
	Badges(ctx context.Context, userID primitive.ObjectID, today time.Time) (domain.BadgeFlags, error)
	// WeeklySummary recaps the current ISO week (Monday anchor).
	WeeklySummary(ctx context.Context, userID primitive.ObjectID, today time.Time) (*WeeklySummary, error)
	// ExportCSV renders the user's full journal as CSV, sorted by date.
	ExportCSV(ctx context.Context, userID primitive.ObjectID) ([]byte, error)
}

// --- Service Implementation ---

// progressService implements the ProgressService interface.
type progressService struct {
	workoutRepo repository.WorkoutRepository
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(workoutRepo repository.WorkoutRepository) ProgressService {
	return &progressService{workoutRepo: workoutRepo}
}

// AggregateRecent computes the fixed-lookback weekly series: window i covers
// [start+7i, start+7i+6] where start is windowCount weeks before today.
func (s *progressService) AggregateRecent(ctx context.Context, userID primitive.ObjectID, today time.Time, windowCount int) ([]domain.WeeklyBucket, error) {
	if windowCount <= 0 {
		windowCount = DefaultWindowCount
	}
	today = dateutil.DateOnly(today)
	startPeriod := today.AddDate(0, 0, -7*windowCount)

	workouts, err := s.workoutRepo.GetByUserIDSince(ctx, userID, startPeriod)
	if err != nil {
		return nil, err
	}

	return bucketize(workouts, startPeriod, windowCount), nil
}

// AggregateHistory computes the full progression series from the user's first
// workout to their last. The boundary dates are inclusive: window i covers
// [first+7i, first+7i+6] and the walk continues while the cursor has not
// passed the last workout date.
func (s *progressService) AggregateHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.WeeklyBucket, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return []domain.WeeklyBucket{}, nil
	}

	// Repository orders by date ascending.
	first := dateutil.DateOnly(workouts[0].Date)
	last := dateutil.DateOnly(workouts[len(workouts)-1].Date)

	var buckets []domain.WeeklyBucket
	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 0, 7) {
		buckets = append(buckets, bucketFor(workouts, cursor))
	}
	return buckets, nil
}

// EvaluateBadges derives the badge flags from the lookback buckets.
// Regularity requires every window to reach the session threshold: windows
// with no data count as 0 sessions, not "not applicable". Volume sums
// duration across the whole lookback; the threshold is inclusive.
func (s *progressService) EvaluateBadges(buckets []domain.WeeklyBucket) domain.BadgeFlags {
	flags := domain.BadgeFlags{Regularity: len(buckets) > 0}
	for _, b := range buckets {
		if b.Sessions < regularityMinSessions {
			flags.Regularity = false
		}
		flags.TotalMinutes += b.TotalMinutes
	}
	flags.Volume = flags.TotalMinutes >= volumeMinMinutes
	return flags
}

// Badges aggregates the default lookback and evaluates the flags.
func (s *progressService) Badges(ctx context.Context, userID primitive.ObjectID, today time.Time) (domain.BadgeFlags, error) {
	buckets, err := s.AggregateRecent(ctx, userID, today, DefaultWindowCount)
	if err != nil {
		return domain.BadgeFlags{}, err
	}
	return s.EvaluateBadges(buckets), nil
}

// WeeklySummary counts sessions and minutes for the current ISO week.
func (s *progressService) WeeklySummary(ctx context.Context, userID primitive.ObjectID, today time.Time) (*WeeklySummary, error) {
	today = dateutil.DateOnly(today)
	weekStart := dateutil.StartOfISOWeek(today)

	workouts, err := s.workoutRepo.GetByUserIDSince(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	summary := &WeeklySummary{WeekStart: weekStart}
	for _, w := range workouts {
		d := dateutil.DateOnly(w.Date)
		if d.After(today) {
			continue // planned future sessions do not count yet
		}
		summary.Sessions++
		summary.TotalMinutes += w.DurationMinutes
	}
	return summary, nil
}

// ExportCSV renders the journal with columns
// Date, Title, Type/Program, Duration(min), Notes. One row per workout,
// sorted by date then title so exports are deterministic.
func (s *progressService) ExportCSV(ctx context.Context, userID primitive.ObjectID) ([]byte, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		if !workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].Date.Before(workouts[j].Date)
		}
		return workouts[i].Title < workouts[j].Title
	})

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Date", "Title", "Type/Program", "Duration(min)", "Notes"}); err != nil {
		return nil, err
	}
	for _, w := range workouts {
		record := []string{
			dateutil.DateOnly(w.Date).Format("2006-01-02"),
			w.Title,
			w.WorkoutType,
			strconv.Itoa(w.DurationMinutes),
			w.Notes,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bucketize emits count sequential 7-day buckets starting at start.
func bucketize(workouts []domain.Workout, start time.Time, count int) []domain.WeeklyBucket {
	buckets := make([]domain.WeeklyBucket, 0, count)
	for i := 0; i < count; i++ {
		buckets = append(buckets, bucketFor(workouts, start.AddDate(0, 0, 7*i)))
	}
	return buckets
}

// bucketFor aggregates the workouts falling inside [weekStart, weekStart+6].
func bucketFor(workouts []domain.Workout, weekStart time.Time) domain.WeeklyBucket {
	start, end := dateutil.WeekWindow(weekStart)
	bucket := domain.WeeklyBucket{WeekStart: start}
	for _, w := range workouts {
		d := dateutil.DateOnly(w.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		bucket.Sessions++
		bucket.TotalMinutes += w.DurationMinutes
		bucket.TrainingLoad += w.TrainingLoad()
	}
	return bucket
}
