package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yurizz-crypto/passvault/internal/auth"
	"github.com/yurizz-crypto/passvault/internal/crypto"
	"github.com/yurizz-crypto/passvault/internal/domain/model"
	"github.com/yurizz-crypto/passvault/internal/domain/port/driven"
)

const minPasswordLength = 8

// AccountService handles registration, login, token refresh, and profile
// lookup. Account passwords are hashed with Argon2id; they are unrelated to
// the record encryption key.
type AccountService struct {
	users  driven.UserStore
	tokens *auth.JWTManager
}

// NewAccountService creates an AccountService.
func NewAccountService(users driven.UserStore, tokens *auth.JWTManager) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
	}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a new account and issues its first token pair.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, auth.TokenPair, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	username := strings.TrimSpace(input.Username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, auth.TokenPair{}, newValidationError("email", "a valid email is required")
	}
	if username == "" {
		return nil, auth.TokenPair{}, newValidationError("username", "username is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, auth.TokenPair{}, newValidationError("password", "password must be at least 8 characters")
	}

	salt, err := crypto.GenerateSalt(crypto.SaltLength)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: crypto.HashPassword(input.Password, salt),
		PasswordSalt: salt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, driven.ErrEmailTaken):
			return nil, auth.TokenPair{}, newValidationError("email", "email already registered")
		case errors.Is(err, driven.ErrUsernameTaken):
			return nil, auth.TokenPair{}, newValidationError("username", "username already registered")
		}
		return nil, auth.TokenPair{}, err
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	return &user, pair, nil
}

// Login verifies an email/password pair and issues tokens. An unknown email
// and a wrong password both return ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, auth.TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, auth.TokenPair{}, newValidationError("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, driven.ErrUserNotFound) {
			return nil, auth.TokenPair{}, ErrInvalidCredentials
		}
		return nil, auth.TokenPair{}, err
	}

	if !crypto.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh validates a refresh token and issues a fresh pair.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	userID, err := s.tokens.Validate(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return auth.TokenPair{}, err
	}

	// The account may have been removed since the token was issued.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, driven.ErrUserNotFound) {
			return auth.TokenPair{}, auth.ErrInvalidToken
		}
		return auth.TokenPair{}, err
	}

	return s.tokens.GeneratePair(userID)
}

// Profile returns the account for the given id.
func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}
