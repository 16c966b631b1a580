package hierarchy

import (
	"context"

	"telstock/internal/core/id"
)

// Repository defines the interface for User persistence.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users, optionally filtered by role.
	List(ctx context.Context, role *Role) ([]*User, error)
}

// SnapshotCache caches the full user set for eligibility computations.
// Implementations must degrade to misses when the backing store is down.
type SnapshotCache interface {
	GetUsers(ctx context.Context) ([]*User, bool)
	SetUsers(ctx context.Context, users []*User)
	Invalidate(ctx context.Context)
}
