package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicgrid/civic-complaints-api/api/handlers"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/databases/mocks"
	"github.com/civicgrid/civic-complaints-api/models"
)

func TestPasswordReset_ForgotPasswordHandlerMissingUsername(t *testing.T) {
	body := bytes.NewBufferString(`{}`)
	req, err := http.NewRequest("POST", "/municipalities/forgot-password", body)
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.PasswordReset{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ForgotPasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Username is required")
}

func TestPasswordReset_ForgotPasswordHandlerUnknownUser(t *testing.T) {
	body := bytes.NewBufferString(`{"username": "ghost"}`)
	req, err := http.NewRequest("POST", "/municipalities/forgot-password", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "Municipals").Return(conn)

	h := handlers.PasswordReset{
		MDB: databases.NewMunicipalityDatabase(db),
		RDB: databases.NewPasswordResetDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ForgotPasswordHandler).ServeHTTP(rr, req)

	// unknown accounts get the same answer as known ones
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "If that official account exists, a reset link has been sent.")
	db.AssertNotCalled(t, "Collection", "OfficialPasswordResets")
}

func TestPasswordReset_ResetPasswordHandlerInvalidToken(t *testing.T) {
	body := bytes.NewBufferString(`{"token": "deadbeef", "password": "new-password"}`)
	req, err := http.NewRequest("POST", "/municipalities/reset-password", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "OfficialPasswordResets").Return(conn)

	h := handlers.PasswordReset{
		MDB: databases.NewMunicipalityDatabase(db),
		RDB: databases.NewPasswordResetDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ResetPasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired token")
}

func TestPasswordReset_ResetPasswordHandlerSuccess(t *testing.T) {
	body := bytes.NewBufferString(`{"token": "deadbeef", "password": "new-password"}`)
	req, err := http.NewRequest("POST", "/municipalities/reset-password", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	rConn := &mocks.CollectionHelper{}
	mConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.OfficialPasswordReset)
		(*arg).DistrictID = 12
	})
	rConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	rConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	var capturedFilter, capturedUpdate bson.M
	mConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			capturedFilter = args.Get(1).(bson.M)
			capturedUpdate = args.Get(2).(bson.M)
		})

	db.On("Collection", "OfficialPasswordResets").Return(rConn)
	db.On("Collection", "Municipals").Return(mConn)

	h := handlers.PasswordReset{
		MDB: databases.NewMunicipalityDatabase(db),
		RDB: databases.NewPasswordResetDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ResetPasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Password updated")

	assert.Equal(t, bson.M{"district_id": 12}, capturedFilter)
	set := capturedUpdate["$set"].(bson.M)
	newHash, ok := set["hashed_password"].(string)
	assert.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password")))

	// the token must be single-use
	rConn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
