package databases

// go generate: mockery --name StateDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicgrid/civic-complaints-api/models"
)

const stateName = "States"

// StateDatabase contains the methods to use with the state database
type StateDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.State, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.State, error)
}

type stateDatabase struct {
	db DatabaseHelper
}

// NewStateDatabase initializes a new instance of state database with the provided db connection
func NewStateDatabase(db DatabaseHelper) StateDatabase {
	return &stateDatabase{
		db: db,
	}
}

func (s *stateDatabase) FindOne(ctx context.Context, filter interface{}) (*models.State, error) {
	state := &models.State{}
	err := s.db.Collection(stateName).FindOne(ctx, filter).Decode(&state)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *stateDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.State, error) {
	var states []models.State
	cur, err := s.db.Collection(stateName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&states)
	if err != nil {
		return nil, err
	}
	return states, nil
}
