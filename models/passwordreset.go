package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OfficialPasswordReset stores password reset tokens for municipal
// officials. Only the sha256 of the token is persisted.
type OfficialPasswordReset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DistrictID int                `bson:"districtId" json:"districtId"`
	TokenHash  string             `bson:"tokenHash" json:"-"`
	ExpiresAt  time.Time          `bson:"expiresAt" json:"expiresAt"`
	UsedAt     *time.Time         `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
