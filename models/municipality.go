package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Municipality holds the structure for the Municipals collection in mongo.
// The solved/pending counters are maintained incrementally by complaint
// transitions and recomputed by the nightly reconciliation job.
type Municipality struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DistrictID       int                `bson:"district_id" json:"district_id"`
	DistrictName     string             `bson:"district_name" json:"district_name"`
	StateID          int                `bson:"state_id" json:"state_id"`
	Solved           int                `bson:"solved" json:"solved"`
	Pending          int                `bson:"pending" json:"pending"`
	Demerits         int                `bson:"demerits" json:"demerits"`
	OfficialUsername string             `bson:"official_username" json:"official_username"`
	HashedPassword   string             `bson:"hashed_password" json:"-"`
}
