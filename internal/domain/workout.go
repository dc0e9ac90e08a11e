package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a single logged training session belonging to one user.
// Sets are embedded: they have no lifecycle of their own.
type Workout struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	ProgramID       *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"` // Optional: the program this session was created from
	Date            time.Time           `bson:"date" json:"date"`                               // Day of the session (midnight UTC)
	Title           string              `bson:"title" json:"title"`
	WorkoutType     string              `bson:"workoutType" json:"workoutType"` // e.g. "General", "Cardio", "Strength"
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	DurationMinutes int                 `bson:"durationMinutes" json:"durationMinutes"`
	Sets            []WorkoutSet        `bson:"sets,omitempty" json:"sets,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutSet is one logged set within a workout.
type WorkoutSet struct {
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetNumber   int                `bson:"setNumber" json:"setNumber"`
	Reps        int                `bson:"reps" json:"reps"`
	WeightKg    float64            `bson:"weightKg" json:"weightKg"`
	RPE         *float64           `bson:"rpe,omitempty" json:"rpe,omitempty"`
	RestSeconds *int               `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
}

// TrainingLoad is the sum of reps x weight over the workout's sets,
// a proxy for cumulative work volume.
func (w *Workout) TrainingLoad() float64 {
	var load float64
	for _, s := range w.Sets {
		load += float64(s.Reps) * s.WeightKg
	}
	return load
}
