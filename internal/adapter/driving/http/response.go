package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yurizz-crypto/passvault/internal/application"
	"github.com/yurizz-crypto/passvault/internal/auth"
	"github.com/yurizz-crypto/passvault/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeValidationError writes a 400 carrying the offending field.
func writeValidationError(w http.ResponseWriter, verr *application.ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: verr.Message,
		Field: verr.Field,
	})
}

// errorResponse is the standard error response body. Messages are stable and
// generic; wrapped error text never reaches the client.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Secret status values on RecordResponse when a reveal was requested.
const (
	secretStatusOK         = "ok"
	secretStatusUnreadable = "unreadable"
)

// RecordResponse is the JSON representation of a password record. Secret and
// SecretStatus are populated only on a reveal request; a record whose stored
// ciphertext no longer decrypts comes back with a null secret and
// secret_status "unreadable".
type RecordResponse struct {
	ID           string  `json:"id"`
	SiteName     string  `json:"site_name"`
	SiteURL      string  `json:"site_url"`
	Username     string  `json:"username"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	Secret       *string `json:"secret,omitempty"`
	SecretStatus string  `json:"secret_status,omitempty"`
}

func toRecordResponse(rec model.PasswordRecord, secret *application.RevealedSecret) RecordResponse {
	resp := RecordResponse{
		ID:        rec.ID.String(),
		SiteName:  rec.SiteName,
		SiteURL:   rec.SiteURL,
		Username:  rec.Username,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if secret != nil {
		if secret.Unreadable {
			resp.SecretStatus = secretStatusUnreadable
		} else {
			value := secret.Value
			resp.Secret = &value
			resp.SecretStatus = secretStatusOK
		}
	}

	return resp
}

// UserResponse is the JSON representation of an account.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(user model.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  string `json:"access_expires_at"`
	RefreshExpiresAt string `json:"refresh_expires_at"`
}

func toTokenResponse(pair auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt.UTC().Format(time.RFC3339),
		RefreshExpiresAt: pair.RefreshExpiresAt.UTC().Format(time.RFC3339),
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Request bodies.

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RecordRequest is the body of record create and update calls. On update an
// absent or empty password keeps the stored secret unchanged.
type RecordRequest struct {
	SiteName string `json:"site_name"`
	SiteURL  string `json:"site_url"`
	Username string `json:"username"`
	Notes    string `json:"notes"`
	Password string `json:"password"`
}
