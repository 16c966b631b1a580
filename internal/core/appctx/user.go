package appctx

import "context"

// UserContext carries the authenticated acting user.
type UserContext struct {
	UserID string
	Name   string
	Email  string
	Role   string
	Region string
}

type userKey struct{}

// WithUser adds the acting user to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the acting user from context or nil.
func GetUser(ctx context.Context) *UserContext {
	if user, ok := ctx.Value(userKey{}).(*UserContext); ok {
		return user
	}
	return nil
}

// GetUserID returns the acting user's id or empty string.
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.UserID
	}
	return ""
}

// HasRole reports whether the acting user has one of the given roles.
func HasRole(ctx context.Context, roles ...string) bool {
	user := GetUser(ctx)
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}
