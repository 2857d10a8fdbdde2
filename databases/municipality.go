package databases

// go generate: mockery --name MunicipalityDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicgrid/civic-complaints-api/models"
)

const municipalityName = "Municipals"

// MunicipalityDatabase contains the methods to use with the municipality database
type MunicipalityDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Municipality, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Municipality, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type municipalityDatabase struct {
	db DatabaseHelper
}

// NewMunicipalityDatabase initializes a new instance of municipality database with the provided db connection
func NewMunicipalityDatabase(db DatabaseHelper) MunicipalityDatabase {
	return &municipalityDatabase{
		db: db,
	}
}

func (m *municipalityDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Municipality, error) {
	municipality := &models.Municipality{}
	err := m.db.Collection(municipalityName).FindOne(ctx, filter).Decode(&municipality)
	if err != nil {
		return nil, err
	}
	return municipality, nil
}

func (m *municipalityDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Municipality, error) {
	var municipalities []models.Municipality
	cur, err := m.db.Collection(municipalityName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&municipalities)
	if err != nil {
		return nil, err
	}
	return municipalities, nil
}

func (m *municipalityDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return m.db.Collection(municipalityName).UpdateOne(ctx, filter, update, opts...)
}
