package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleMember Role = "member"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

// User represents an account in the system (member, coach or admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Profile (filled in during onboarding) ---
	Age      *int `bson:"age,omitempty" json:"age,omitempty"`
	WeightKg *int `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	HeightCm *int `bson:"heightCm,omitempty" json:"heightCm,omitempty"`

	// --- Subscription ---
	// Denormalized pointer to the user's current plan. The engagement history is
	// the authoritative record; this pointer is only consulted when no active
	// engagement exists.
	PlanID *primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"`
}

// ProfileComplete reports whether the onboarding profile fields are all present.
func (u *User) ProfileComplete() bool {
	return u.Age != nil && u.WeightKg != nil && u.HeightCm != nil
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
