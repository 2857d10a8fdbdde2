package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicgrid/civic-complaints-api/config"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/databases/mocks"
	"github.com/civicgrid/civic-complaints-api/models"
)

func TestNewComplaintDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	complaintDB := databases.NewComplaintDatabase(db)

	assert.NotEmpty(t, complaintDB)
}

func TestComplaintDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Complaint)
		(*arg).Title = "mocked-complaint"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "Complaints").Return(collectionHelper)

	// Create new database with mocked Database interface
	complaintDba := databases.NewComplaintDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	complaint, err := complaintDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, complaint)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	complaint, err = complaintDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, "mocked-complaint", complaint.Title)
	assert.NoError(t, err)
}

func TestComplaintDatabase_Find(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var curHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	curHelperCorrect = &mocks.CursorHelper{}

	curHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Complaint)
		(*arg) = []models.Complaint{{Title: "mocked-complaint"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(curHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "Complaints").Return(collectionHelper)

	complaintDba := databases.NewComplaintDatabase(dbHelper)

	complaints, err := complaintDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, complaints)
	assert.EqualError(t, err, "mocked-error")

	complaints, err = complaintDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.Complaint{{Title: "mocked-complaint"}}, complaints)
	assert.NoError(t, err)
}

func TestComplaintDatabase_FindOneAndUpdate(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperCorrect databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Complaint)
		(*arg).Status = models.StatusSolved
	})

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": "abc"}, mock.Anything, opts).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "Complaints").Return(collectionHelper)

	complaintDba := databases.NewComplaintDatabase(dbHelper)

	complaint, err := complaintDba.FindOneAndUpdate(context.Background(),
		bson.M{"_id": "abc"},
		bson.M{"$set": bson.M{"status": models.StatusSolved}},
		opts,
	)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusSolved, complaint.Status)
}

func TestComplaintDatabase_CountDocuments(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{"status": models.StatusPending}).
		Return(int64(7), nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "Complaints").Return(collectionHelper)

	complaintDba := databases.NewComplaintDatabase(dbHelper)

	count, err := complaintDba.CountDocuments(context.Background(), bson.M{"status": models.StatusPending})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
