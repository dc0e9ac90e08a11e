package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a user-authored training template: a named sequence of exercises
// with per-day ordering and target volumes. Creating a workout from a program
// prefills the workout's sets from these targets.
type Program struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Level       string             `bson:"level,omitempty" json:"level,omitempty"`       // e.g. "Beginner", "Intermediate", "Advanced"
	GoalType    string             `bson:"goalType,omitempty" json:"goalType,omitempty"` // e.g. "Strength", "Hypertrophy", "Cardio"
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProgramExercise places one exercise inside a program.
// Exercises are displayed ordered by (DayIndex, OrderIndex).
type ProgramExercise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID      primitive.ObjectID `bson:"programId" json:"programId"`
	ExerciseID     primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	DayIndex       int                `bson:"dayIndex" json:"dayIndex"`
	OrderIndex     int                `bson:"orderIndex" json:"orderIndex"`
	TargetSets     int                `bson:"targetSets" json:"targetSets"`
	TargetReps     int                `bson:"targetReps" json:"targetReps"`
	TargetWeightKg float64            `bson:"targetWeightKg" json:"targetWeightKg"`
}
