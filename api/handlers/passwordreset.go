package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicgrid/civic-complaints-api/config"
	"github.com/civicgrid/civic-complaints-api/databases"
	"github.com/civicgrid/civic-complaints-api/models"
)

// PasswordReset handles forgot/reset password for municipal officials
type PasswordReset struct {
	MDB databases.MunicipalityDatabase
	RDB databases.PasswordResetDatabase
}

type forgotRequest struct {
	Username string `json:"username"`
}

// ForgotPasswordHandler mails a reset link when the official exists. The
// response is the same either way so usernames can't be probed.
func (h PasswordReset) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "Username is required"})
		return
	}

	official, err := h.MDB.FindOne(r.Context(), bson.M{"official_username": username})
	if err == nil {
		plain, hashHex, genErr := generateResetToken()
		if genErr == nil {
			_, _ = h.RDB.InsertOne(r.Context(), models.OfficialPasswordReset{
				DistrictID: official.DistrictID,
				TokenHash:  hashHex,
				ExpiresAt:  time.Now().Add(1 * time.Hour),
				CreatedAt:  time.Now(),
			})
			if mailErr := sendResetEmail(username, buildResetLink(os.Getenv("PUBLIC_WEB_BASE_URL"), plain)); mailErr != nil {
				zap.S().Errorw("failed to send reset email", "username", username, "error", mailErr)
			}
		}
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{
		Success: true,
		Message: "If that official account exists, a reset link has been sent.",
	})
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPasswordHandler sets a new password given an unexpired, unused
// reset token
func (h PasswordReset) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "Token and password are required"})
		return
	}

	reset, err := h.RDB.FindOne(r.Context(), bson.M{
		"tokenHash": hashToken(token),
		"usedAt":    bson.M{"$exists": false},
		"expiresAt": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.StatusResponse{Success: false, Message: "Invalid or expired token"})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	_, err = h.MDB.UpdateOne(r.Context(),
		bson.M{"district_id": reset.DistrictID},
		bson.M{"$set": bson.M{"hashed_password": string(newHash)}},
	)
	if err != nil {
		config.ErrorStatus("failed to update password", http.StatusInternalServerError, w, err)
		return
	}
	_, _ = h.RDB.UpdateOne(r.Context(),
		bson.M{"_id": reset.ID},
		bson.M{"$set": bson.M{"usedAt": time.Now()}},
	)

	writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: "Password updated"})
}

func generateResetToken() (plain string, hashHex string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func buildResetLink(baseURL, token string) string {
	base := strings.TrimRight(baseURL, "/")
	return base + "/reset-password?token=" + token
}

func sendResetEmail(username, resetLink string) error {
	from := mail.NewEmail("Civic Complaints", os.Getenv("RESET_EMAIL_FROM"))
	to := mail.NewEmail("", username)
	subject := "Civic Complaints Password Reset"
	plain := "Reset your password using this link: " + resetLink
	html := fmt.Sprintf(`<p>A password reset was requested for your official account.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires in one hour. If you did not request this, ignore this email.</p>`, resetLink)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	_, err := client.Send(msg)
	return err
}
