package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the shared library.
type Exercise struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	PrimaryMuscle string             `bson:"primaryMuscle" json:"primaryMuscle"` // e.g. "Chest", "Legs", "Back"
	Equipment     string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty    string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "Beginner", "Intermediate", "Advanced"
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
