package dateutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"leap year clamp", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"non-leap clamp", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"zero months is a no-op", date(2024, time.March, 15), 0, date(2024, time.March, 15)},
		{"plain add", date(2024, time.March, 15), 6, date(2024, time.September, 15)},
		{"year rollover", date(2023, time.November, 10), 3, date(2024, time.February, 10)},
		{"multi-year rollover", date(2022, time.December, 31), 14, date(2024, time.February, 29)},
		{"clamp to 30-day month", date(2024, time.May, 31), 1, date(2024, time.June, 30)},
		{"twelve months keeps day", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.start, tt.months); !got.Equal(tt.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestAddMonthsNegativeIsNoOp(t *testing.T) {
	d := date(2024, time.July, 4)
	if got := AddMonths(d, -3); !got.Equal(d) {
		t.Errorf("AddMonths(%v, -3) = %v, want start date unchanged", d, got)
	}
}

func TestWeekWindow(t *testing.T) {
	start, end := WeekWindow(date(2024, time.March, 4))
	if !start.Equal(date(2024, time.March, 4)) {
		t.Errorf("start = %v, want 2024-03-04", start)
	}
	if !end.Equal(date(2024, time.March, 10)) {
		t.Errorf("end = %v, want 2024-03-10 (start+6, inclusive)", end)
	}
}

func TestWeekWindowDropsTimeOfDay(t *testing.T) {
	anchor := time.Date(2024, time.March, 4, 17, 45, 12, 0, time.UTC)
	start, _ := WeekWindow(anchor)
	if !start.Equal(date(2024, time.March, 4)) {
		t.Errorf("start = %v, want midnight UTC", start)
	}
}

func TestStartOfISOWeek(t *testing.T) {
	tests := []struct {
		day  time.Time
		want time.Time
	}{
		{date(2024, time.March, 15), date(2024, time.March, 11)}, // Friday -> Monday
		{date(2024, time.March, 11), date(2024, time.March, 11)}, // Monday is its own start
		{date(2024, time.March, 17), date(2024, time.March, 11)}, // Sunday belongs to the preceding Monday
	}
	for _, tt := range tests {
		if got := StartOfISOWeek(tt.day); !got.Equal(tt.want) {
			t.Errorf("StartOfISOWeek(%v) = %v, want %v", tt.day, got, tt.want)
		}
	}
}
