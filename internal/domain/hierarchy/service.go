package hierarchy

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/pkg/logger"
)

// Service provides business logic for the user catalog and hierarchy queries.
type Service struct {
	repo  Repository
	cache SnapshotCache
}

// NewService creates a new hierarchy service. cache may be nil.
func NewService(repo Repository, cache SnapshotCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateUser registers a new user. The password is hashed with bcrypt;
// identity fields are normalized before any validation or storage.
func (s *Service) CreateUser(ctx context.Context, user *User, password string) error {
	user.Normalize()
	if err := user.Validate(ctx); err != nil {
		return err
	}
	if len(password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	if existing, err := s.repo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return apperror.NewDuplicate("user", "email", user.Email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	user.PasswordHash = string(hash)

	if id.IsNil(user.ID) {
		user.ID = id.New()
	}
	user.IsActive = true

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx)

	logger.Info(ctx, "user created", "id", user.ID, "role", user.Role)
	return nil
}

// UpdateUser updates mutable user fields (name, region, links, active flag).
func (s *Service) UpdateUser(ctx context.Context, user *User) error {
	user.Normalize()
	if err := user.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetUserByEmail returns a user by normalized email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// ListUsers returns all users, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role *Role) ([]*User, error) {
	return s.repo.List(ctx, role)
}

// EligibleRecipientsFor resolves the actor and computes their allocation
// recipients over the current user snapshot.
func (s *Service) EligibleRecipientsFor(ctx context.Context, actorID id.ID) ([]*User, error) {
	actor, all, err := s.actorAndSnapshot(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return EligibleRecipients(actor, all), nil
}

// SubordinatesOf resolves the actor and computes their subordinate closure.
func (s *Service) SubordinatesOf(ctx context.Context, actorID id.ID) ([]*User, error) {
	actor, all, err := s.actorAndSnapshot(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return Subordinates(actor, all), nil
}

// Snapshot returns the full user set, served from cache when warm.
func (s *Service) Snapshot(ctx context.Context) ([]*User, error) {
	if s.cache != nil {
		if users, ok := s.cache.GetUsers(ctx); ok {
			return users, nil
		}
	}

	users, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetUsers(ctx, users)
	}
	return users, nil
}

func (s *Service) actorAndSnapshot(ctx context.Context, actorID id.ID) (*User, []*User, error) {
	all, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range all {
		if u.ID == actorID {
			return u, all, nil
		}
	}
	// Snapshot may be stale after a fresh signup
	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return actor, all, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
