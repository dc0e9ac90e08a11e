package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Badge codes evaluated by the progress service.
const (
	BadgeCodeRegularity = "regularity"
	BadgeCodeVolume     = "volume"
)

// Badge is catalog reference data describing an achievement. Whether a user
// holds a badge is never stored: eligibility is recomputed from workout history
// on every request (see progress service).
type Badge struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"` // Unique
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}
