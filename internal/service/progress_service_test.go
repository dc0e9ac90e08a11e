package service

import (
	"context"
	"fittrackr/server/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProgressFixture() (*fakeWorkoutRepo, ProgressService, primitive.ObjectID) {
	repo := newFakeWorkoutRepo()
	return repo, NewProgressService(repo), primitive.NewObjectID()
}

// session logs a plain workout on the given day.
func session(repo *fakeWorkoutRepo, userID primitive.ObjectID, day time.Time, minutes int) {
	repo.add(domain.Workout{
		UserID:          userID,
		Date:            day,
		Title:           "Session " + day.Format("2006-01-02"),
		WorkoutType:     "General",
		DurationMinutes: minutes,
	})
}

func TestAggregateRecentWindowBoundaries(t *testing.T) {
	repo, svc, userID := newProgressFixture()
	today := date(2024, 5, 1)
	start := today.AddDate(0, 0, -28)

	// One workout on each boundary of the first window [start, start+6],
	// one just outside it on start+7 (the second window's first day).
	session(repo, userID, start, 30)
	session(repo, userID, start.AddDate(0, 0, 6), 40)
	session(repo, userID, start.AddDate(0, 0, 7), 50)

	buckets, err := svc.AggregateRecent(context.Background(), userID, today, 4)
	if err != nil {
		t.Fatalf("AggregateRecent: %v", err)
	}
	if len(buckets) != 4 {
		t.Fatalf("bucket count = %d, want 4", len(buckets))
	}

	if buckets[0].Sessions != 2 || buckets[0].TotalMinutes != 70 {
		t.Errorf("window 0 = %+v, want 2 sessions / 70 min", buckets[0])
	}
	if buckets[1].Sessions != 1 || buckets[1].TotalMinutes != 50 {
		t.Errorf("window 1 = %+v, want 1 session / 50 min", buckets[1])
	}
	if buckets[2].Sessions != 0 || buckets[3].Sessions != 0 {
		t.Errorf("empty windows carried sessions: %+v %+v", buckets[2], buckets[3])
	}
}

func TestAggregateRecentEmptyWindowsAreZero(t *testing.T) {
	_, svc, userID := newProgressFixture()

	buckets, err := svc.AggregateRecent(context.Background(), userID, date(2024, 5, 1), 4)
	if err != nil {
		t.Fatalf("AggregateRecent: %v", err)
	}
	for i, b := range buckets {
		if b.Sessions != 0 || b.TotalMinutes != 0 || b.TrainingLoad != 0 {
			t.Errorf("window %d not zero: %+v", i, b)
		}
	}
}

func TestAggregateRecentIgnoresTimeOfDay(t *testing.T) {
	repo, svc, userID := newProgressFixture()
	today := date(2024, 5, 1)
	start := today.AddDate(0, 0, -28)

	// A workout stored with a late-evening timestamp still lands in the
	// window holding its calendar day.
	repo.add(domain.Workout{
		UserID:          userID,
		Date:            start.Add(23*time.Hour + 59*time.Minute),
		Title:           "Late",
		DurationMinutes: 45,
	})

	buckets, err := svc.AggregateRecent(context.Background(), userID, today, 4)
	if err != nil {
		t.Fatalf("AggregateRecent: %v", err)
	}
	if buckets[0].Sessions != 1 {
		t.Errorf("window 0 sessions = %d, want 1", buckets[0].Sessions)
	}
}

func TestAggregateHistoryEmpty(t *testing.T) {
	_, svc, userID := newProgressFixture()

	buckets, err := svc.AggregateHistory(context.Background(), userID)
	if err != nil {
		t.Fatalf("AggregateHistory: %v", err)
	}
	if buckets == nil {
		t.Fatal("want empty slice, got nil")
	}
	if len(buckets) != 0 {
		t.Fatalf("bucket count = %d, want 0", len(buckets))
	}
}

func TestAggregateHistoryWalksFullSpan(t *testing.T) {
	repo, svc, userID := newProgressFixture()

	first := date(2024, 1, 1)
	session(repo, userID, first, 30)
	session(repo, userID, first.AddDate(0, 0, 10), 40) // week 2
	session(repo, userID, first.AddDate(0, 0, 21), 50) // week 4, last date

	buckets, err := svc.AggregateHistory(context.Background(), userID)
	if err != nil {
		t.Fatalf("AggregateHistory: %v", err)
	}
	// Span is 22 days: four strides of 7 starting at the first date.
	if len(buckets) != 4 {
		t.Fatalf("bucket count = %d, want 4", len(buckets))
	}

	sessions := []int{buckets[0].Sessions, buckets[1].Sessions, buckets[2].Sessions, buckets[3].Sessions}
	if diff := cmp.Diff([]int{1, 1, 0, 1}, sessions); diff != "" {
		t.Errorf("session distribution mismatch (-want +got):\n%s", diff)
	}
	if !buckets[1].WeekStart.Equal(first.AddDate(0, 0, 7)) {
		t.Errorf("week 2 start = %s, want %s", buckets[1].WeekStart, first.AddDate(0, 0, 7))
	}
}

func TestAggregateSumsTrainingLoad(t *testing.T) {
	repo, svc, userID := newProgressFixture()
	exID := primitive.NewObjectID()
	first := date(2024, 1, 1)

	repo.add(domain.Workout{
		UserID:          userID,
		Date:            first,
		Title:           "Strength",
		DurationMinutes: 60,
		Sets: []domain.WorkoutSet{
			{ExerciseID: exID, SetNumber: 1, Reps: 5, WeightKg: 100},   // 500
			{ExerciseID: exID, SetNumber: 2, Reps: 5, WeightKg: 102.5}, // 512.5
		},
	})

	buckets, err := svc.AggregateHistory(context.Background(), userID)
	if err != nil {
		t.Fatalf("AggregateHistory: %v", err)
	}
	if got, want := buckets[0].TrainingLoad, 1012.5; got != want {
		t.Errorf("training load = %v, want %v", got, want)
	}
}

func TestEvaluateBadgesRegularity(t *testing.T) {
	_, svc, _ := newProgressFixture()

	tests := []struct {
		name     string
		sessions []int
		want     bool
	}{
		{"all weeks at threshold", []int{3, 3, 3, 3}, true},
		{"above threshold", []int{5, 4, 3, 6}, true},
		{"one week short", []int{3, 3, 2, 3}, false},
		{"one empty week", []int{4, 4, 0, 4}, false},
		{"no buckets", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buckets []domain.WeeklyBucket
			for _, s := range tt.sessions {
				buckets = append(buckets, domain.WeeklyBucket{Sessions: s})
			}
			flags := svc.EvaluateBadges(buckets)
			if flags.Regularity != tt.want {
				t.Errorf("Regularity = %v, want %v", flags.Regularity, tt.want)
			}
		})
	}
}

func TestEvaluateBadgesVolumeBoundary(t *testing.T) {
	_, svc, _ := newProgressFixture()

	tests := []struct {
		name    string
		minutes []int
		want    bool
	}{
		{"exactly at threshold", []int{75, 75, 75, 75}, true}, // 300, inclusive
		{"one minute short", []int{75, 75, 75, 74}, false},    // 299
		{"concentrated in one week", []int{300, 0, 0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buckets []domain.WeeklyBucket
			for _, m := range tt.minutes {
				buckets = append(buckets, domain.WeeklyBucket{TotalMinutes: m})
			}
			flags := svc.EvaluateBadges(buckets)
			if flags.Volume != tt.want {
				t.Errorf("Volume = %v, want %v (total %d)", flags.Volume, tt.want, flags.TotalMinutes)
			}
		})
	}
}

func TestBadgesEndToEnd(t *testing.T) {
	repo, svc, userID := newProgressFixture()
	today := date(2024, 5, 1)
	start := today.AddDate(0, 0, -28)

	// Three 80-minute sessions in each of the four weeks: both badges.
	for week := 0; week < 4; week++ {
		for d := 0; d < 3; d++ {
			session(repo, userID, start.AddDate(0, 0, week*7+d), 80)
		}
	}

	flags, err := svc.Badges(context.Background(), userID, today)
	if err != nil {
		t.Fatalf("Badges: %v", err)
	}
	want := domain.BadgeFlags{Regularity: true, Volume: true, TotalMinutes: 960}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeklySummarySkipsPlannedSessions(t *testing.T) {
	repo, svc, userID := newProgressFixture()
	today := date(2024, 5, 1) // A Wednesday
	monday := date(2024, 4, 29)

	session(repo, userID, monday, 45)
	session(repo, userID, today, 30)
	session(repo, userID, today.AddDate(0, 0, 2), 60) // planned, still this week

	summary, err := svc.WeeklySummary(context.Background(), userID, today)
	if err != nil {
		t.Fatalf("WeeklySummary: %v", err)
	}
	if !summary.WeekStart.Equal(monday) {
		t.Errorf("week start = %s, want %s", summary.WeekStart, monday)
	}
	if summary.Sessions != 2 || summary.TotalMinutes != 75 {
		t.Errorf("summary = %+v, want 2 sessions / 75 min", summary)
	}
}

func TestExportCSV(t *testing.T) {
	repo, svc, userID := newProgressFixture()

	repo.add(domain.Workout{
		UserID: userID, Date: date(2024, 3, 2), Title: "Leg Day",
		WorkoutType: "Strength", DurationMinutes: 55, Notes: "heavy",
	})
	repo.add(domain.Workout{
		UserID: userID, Date: date(2024, 3, 1), Title: "Morning Run",
		WorkoutType: "Cardio", DurationMinutes: 40,
	})

	data, err := svc.ExportCSV(context.Background(), userID)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	want := strings.Join([]string{
		"Date,Title,Type/Program,Duration(min),Notes",
		"2024-03-01,Morning Run,Cardio,40,",
		"2024-03-02,Leg Day,Strength,55,heavy",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSVDeterministicWithinDay(t *testing.T) {
	repo, svc, userID := newProgressFixture()

	day := date(2024, 3, 1)
	repo.add(domain.Workout{UserID: userID, Date: day, Title: "B Session", DurationMinutes: 20})
	repo.add(domain.Workout{UserID: userID, Date: day, Title: "A Session", DurationMinutes: 10})

	first, err := svc.ExportCSV(context.Background(), userID)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(first), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "2024-03-01,A Session") {
		t.Errorf("same-day rows not sorted by title: %q", lines[1])
	}
}
