package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State holds the structure for the States collection in mongo. A state
// owns its municipalities through Municipality.StateID.
type State struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	StateID          int                `bson:"state_id" json:"state_id"`
	StateName        string             `bson:"state_name" json:"state_name"`
	OfficialUsername string             `bson:"official_username" json:"official_username"`
	HashedPassword   string             `bson:"hashed_password" json:"-"`
}
