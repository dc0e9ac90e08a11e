package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal statuses
const (
	GoalStatusPending = "pending"
	GoalStatusReached = "reached"
)

// Goal is a personal target a user sets during onboarding (or later).
type Goal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	GoalType    string             `bson:"goalType" json:"goalType"` // e.g. "weight_loss", "muscle_gain", "endurance"
	TargetValue float64            `bson:"targetValue" json:"targetValue"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Status      string             `bson:"status" json:"status"`
	WeightGoal  *float64           `bson:"weightGoal,omitempty" json:"weightGoal,omitempty"` // Target body weight, when the goal is weight-related
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
