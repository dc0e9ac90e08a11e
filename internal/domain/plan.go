package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionPlan is immutable reference data describing a paid tier.
// TierRank is the comparable order key, TierLabel the display name of the tier.
type SubscriptionPlan struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Code             string             `bson:"code" json:"code"` // Unique, stable (e.g. "basic", "premium")
	PriceMonthly     float64            `bson:"priceMonthly" json:"priceMonthly"`
	TierRank         int                `bson:"tierRank" json:"tierRank"`
	TierLabel        string             `bson:"tierLabel,omitempty" json:"tierLabel,omitempty"`
	CommitmentMonths int                `bson:"commitmentMonths" json:"commitmentMonths"` // 0 = no commitment
}
