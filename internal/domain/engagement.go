package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Engagement records a user's commitment to a subscription plan for a fixed
// period. Engagements are append-only: a later plan change supersedes an
// engagement, it never mutates or deletes it. CommitmentMonths is copied from
// the plan at creation time so later plan edits cannot rewrite history.
type Engagement struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID           primitive.ObjectID `bson:"planId" json:"planId"`
	StartDate        time.Time          `bson:"startDate" json:"startDate"` // Set at creation, immutable
	EndDate          time.Time          `bson:"endDate" json:"endDate"`     // StartDate advanced by CommitmentMonths
	CommitmentMonths int                `bson:"commitmentMonths" json:"commitmentMonths"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsActiveAt reports whether the engagement still locks the user in on the
// given day. A zero-commitment engagement is never active: its end date equals
// its start date and the commitment check fails.
func (e *Engagement) IsActiveAt(today time.Time) bool {
	return e.CommitmentMonths > 0 && !e.EndDate.Before(today)
}
