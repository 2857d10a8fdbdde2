package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicgrid/civic-complaints-api/api"
	"github.com/civicgrid/civic-complaints-api/config"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/models"
)

// State struct mostly used for mocking tests
type State struct {
	DB  databases.StateDatabase
	MDB databases.MunicipalityDatabase
}

// the state dashboard sends login fields under these names
type stateLoginRequest struct {
	EnteredUserName string `json:"enteredUserName"`
	EnteredPassword string `json:"enteredPassword"`
}

// LoginHandler verifies a state official's credentials and issues an
// access/refresh token pair
func (s State) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req stateLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.EnteredUserName == "" || req.EnteredPassword == "" {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "Username and password are required"})
		return
	}

	user, err := s.DB.FindOne(context.Background(), bson.M{"official_username": req.EnteredUserName})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Debugw("state login: unknown username", "username", req.EnteredUserName)
			writeJSON(w, http.StatusUnauthorized, models.StatusResponse{Success: false, Message: "User not found"})
			return
		}
		config.ErrorStatus("failed to get official", http.StatusInternalServerError, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.EnteredPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.StatusResponse{Success: false, Message: "Invalid password"})
		return
	}

	accessToken, refreshToken, err := api.GenerateTokens([]byte(os.Getenv("JWT_SECRET")), map[string]interface{}{
		"username":   user.OfficialUsername,
		"state_id":   user.StateID,
		"state_name": user.StateName,
	})
	if err != nil {
		config.ErrorStatus("failed to generate tokens", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("state login successful", "username", req.EnteredUserName)

	writeJSON(w, http.StatusOK, loginResponse{
		Success:      true,
		User:         user,
		Token:        accessToken,
		RefreshToken: refreshToken,
	})
}

// DistrictsHandler lists the municipalities under a state together with
// the state record itself
func (s State) DistrictsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	districts, err := s.MDB.Find(context.Background(), bson.M{"state_id": req.ID})
	if err != nil {
		config.ErrorStatus("failed to get districts", http.StatusInternalServerError, w, err)
		return
	}
	if districts == nil {
		districts = []models.Municipality{}
	}

	state, err := s.DB.FindOne(context.Background(), bson.M{"state_id": req.ID})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to get state", http.StatusInternalServerError, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"districts": districts,
		"state":     state,
	})
}
