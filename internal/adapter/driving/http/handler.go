// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yurizz-crypto/passvault/internal/application"
	"github.com/yurizz-crypto/passvault/internal/auth"
	"github.com/yurizz-crypto/passvault/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	vault    *application.VaultService
	accounts *application.AccountService
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(vault *application.VaultService, accounts *application.AccountService, logger *slog.Logger) *Handler {
	return &Handler{
		vault:    vault,
		accounts: accounts,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered. Record and
// profile routes sit behind the auth middleware; the whole mux is wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, tokens *auth.JWTManager, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Refresh)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	authed := func(handler http.HandlerFunc) http.Handler {
		return authMiddleware(tokens, handler)
	}
	mux.Handle("GET /api/v1/auth/me", authed(h.Profile))
	mux.Handle("GET /api/v1/passwords", authed(h.ListRecords))
	mux.Handle("POST /api/v1/passwords", authed(h.CreateRecord))
	mux.Handle("GET /api/v1/passwords/{id}", authed(h.GetRecord))
	mux.Handle("PUT /api/v1/passwords/{id}", authed(h.UpdateRecord))
	mux.Handle("DELETE /api/v1/passwords/{id}", authed(h.DeleteRecord))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Register creates a new account and returns it with an initial token pair.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, pair, err := h.accounts.Register(r.Context(), application.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, err, "register failed")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		User:   toUserResponse(*user),
		Tokens: toTokenResponse(pair),
	})
}

// Login verifies credentials and returns a token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, pair, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.writeServiceError(w, err, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		User:   toUserResponse(*user),
		Tokens: toTokenResponse(pair),
	})
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		h.writeServiceError(w, err, "token refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

// Profile returns the authenticated account.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, driven.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h.writeServiceError(w, err, "profile lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// ListRecords returns the caller's records, metadata only.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	recs, err := h.vault.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "list records failed")
		return
	}

	resp := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toRecordResponse(rec, nil))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateRecord stores a new password record for the caller.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.vault.Create(r.Context(), userID, application.CreateRecordInput{
		SiteName: req.SiteName,
		SiteURL:  req.SiteURL,
		Username: req.Username,
		Notes:    req.Notes,
		Secret:   req.Password,
	})
	if err != nil {
		h.writeServiceError(w, err, "create record failed")
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(*rec, nil))
}

// GetRecord returns one record. With ?reveal=true the secret is decrypted
// and included.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "password record not found")
		return
	}

	reveal := r.URL.Query().Get("reveal") == "true"

	rec, secret, err := h.vault.Get(r.Context(), userID, id, reveal)
	if err != nil {
		h.writeServiceError(w, err, "get record failed")
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(*rec, secret))
}

// UpdateRecord replaces a record's metadata and optionally its secret.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "password record not found")
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.vault.Update(r.Context(), userID, id, application.UpdateRecordInput{
		SiteName: req.SiteName,
		SiteURL:  req.SiteURL,
		Username: req.Username,
		Notes:    req.Notes,
		Secret:   req.Password,
	})
	if err != nil {
		h.writeServiceError(w, err, "update record failed")
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(*rec, nil))
}

// DeleteRecord removes a record permanently.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "password record not found")
		return
	}

	if err := h.vault.Delete(r.Context(), userID, id); err != nil {
		h.writeServiceError(w, err, "delete record failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps service-layer failures to responses. Validation
// errors carry their field; not-found covers both absence and foreign
// ownership; anything else is logged and collapsed to a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	var verr *application.ValidationError
	if errors.As(err, &verr) {
		writeValidationError(w, verr)
		return
	}

	if errors.Is(err, driven.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "password record not found")
		return
	}

	h.logger.Error(logMsg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
