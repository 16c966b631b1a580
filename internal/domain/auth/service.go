package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"telstock/internal/core/apperror"
	"telstock/internal/domain/hierarchy"
	"telstock/pkg/logger"
)

// LoginResult carries a fresh token and its owner.
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *hierarchy.User `json:"user"`
}

// Service authenticates users against the user catalog.
type Service struct {
	users *hierarchy.Service
	jwt   *JWTService
}

// NewService creates a new auth service.
func NewService(users *hierarchy.Service, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.NewUnauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid email or password")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(
		user.ID.String(), user.Name, user.Email, string(user.Role), user.Region)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
