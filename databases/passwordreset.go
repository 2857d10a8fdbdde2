package databases

// go generate: mockery --name PasswordResetDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicgrid/civic-complaints-api/models"
)

const passwordResetName = "OfficialPasswordResets"

// PasswordResetDatabase contains the methods to use with the password reset database
type PasswordResetDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.OfficialPasswordReset, error)
	InsertOne(ctx context.Context, reset models.OfficialPasswordReset) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type passwordResetDatabase struct {
	db DatabaseHelper
}

// NewPasswordResetDatabase initializes a new instance of password reset database with the provided db connection
func NewPasswordResetDatabase(db DatabaseHelper) PasswordResetDatabase {
	return &passwordResetDatabase{
		db: db,
	}
}

func (p *passwordResetDatabase) FindOne(ctx context.Context, filter interface{}) (*models.OfficialPasswordReset, error) {
	reset := &models.OfficialPasswordReset{}
	err := p.db.Collection(passwordResetName).FindOne(ctx, filter).Decode(&reset)
	if err != nil {
		return nil, err
	}
	return reset, nil
}

func (p *passwordResetDatabase) InsertOne(ctx context.Context, reset models.OfficialPasswordReset) (InsertOneResultHelper, error) {
	return p.db.Collection(passwordResetName).InsertOne(ctx, reset)
}

func (p *passwordResetDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return p.db.Collection(passwordResetName).UpdateOne(ctx, filter, update, opts...)
}
