package domain

import "time"

// WeeklyBucket is a derived aggregation over one 7-day window
// [WeekStart, WeekStart+6]. Produced fresh per request, never persisted.
type WeeklyBucket struct {
	WeekStart    time.Time `json:"weekStart"`
	Sessions     int       `json:"sessions"`
	TotalMinutes int       `json:"totalMinutes"`
	TrainingLoad float64   `json:"trainingLoad"`
}

// BadgeFlags is the derived badge eligibility for one user, computed from the
// most recent weekly buckets. Never persisted.
type BadgeFlags struct {
	Regularity   bool `json:"regularity"`
	Volume       bool `json:"volume"`
	TotalMinutes int  `json:"totalMinutes"`
}
