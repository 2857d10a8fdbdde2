package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicgrid/civic-complaints-api/api"
	"github.com/civicgrid/civic-complaints-api/config"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/models"
)

// Municipality struct mostly used for mocking tests
type Municipality struct {
	DB  databases.MunicipalityDatabase
	CDB databases.ComplaintDatabase
}

type municipalLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success      bool        `json:"success"`
	User         interface{} `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

// LoginHandler verifies a municipal official's credentials and issues an
// access/refresh token pair
func (m Municipality) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req municipalLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "Username and password are required"})
		return
	}

	user, err := m.DB.FindOne(context.Background(), bson.M{"official_username": req.Username})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			zap.S().Debugw("municipal login: unknown username", "username", req.Username)
			writeJSON(w, http.StatusUnauthorized, models.StatusResponse{Success: false, Message: "User not found"})
			return
		}
		config.ErrorStatus("failed to get official", http.StatusInternalServerError, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.StatusResponse{Success: false, Message: "Invalid password"})
		return
	}

	accessToken, refreshToken, err := api.GenerateTokens([]byte(os.Getenv("JWT_SECRET")), map[string]interface{}{
		"username":      user.OfficialUsername,
		"district_id":   user.DistrictID,
		"district_name": user.DistrictName,
	})
	if err != nil {
		config.ErrorStatus("failed to generate tokens", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("municipal login successful", "username", req.Username)

	writeJSON(w, http.StatusOK, loginResponse{
		Success:      true,
		User:         user,
		Token:        accessToken,
		RefreshToken: refreshToken,
	})
}

// CategoriesHandler returns the static complaint category catalog
func (m Municipality) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": models.ComplaintCategories(),
	})
}

// AllDistrictsHandler lists every municipality aggregate
func (m Municipality) AllDistrictsHandler(w http.ResponseWriter, r *http.Request) {
	districts, err := m.DB.Find(context.Background(), bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get districts", http.StatusInternalServerError, w, err)
		return
	}
	if districts == nil {
		districts = []models.Municipality{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"districts": districts,
	})
}

// FetchDistrictHandler returns one municipality by its numeric district id
func (m Municipality) FetchDistrictHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	district, err := m.DB.FindOne(context.Background(), bson.M{"district_id": req.ID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeJSON(w, http.StatusNotFound, models.StatusResponse{Success: false, Message: "District not found"})
			return
		}
		config.ErrorStatus("failed to get district", http.StatusInternalServerError, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"district": district,
	})
}

// FetchByNameHandler lists a municipality's complaints by its name
func (m Municipality) FetchByNameHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MunicipalityName string `json:"municipalityName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	complaints, err := m.CDB.Find(context.Background(), bson.M{"municipalityName": req.MunicipalityName})
	if err != nil {
		config.ErrorStatus("failed to get complaints", http.StatusInternalServerError, w, err)
		return
	}
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	models.AnnotateEscalation(complaints, time.Now())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"complaints": complaints,
	})
}
