// Package hierarchy provides the user catalog and the organizational
// hierarchy rules: who may receive stock from whom, and who answers to whom.
//
// Roles form a strict 4-level tree:
//
//	admin → regional_manager → team_leader → field_officer
//
// Regional managers link to admins implicitly (there is no upward id);
// team leaders link via RegionalManagerID, field officers via TeamLeaderID.
package hierarchy

import (
	"context"
	"regexp"
	"strings"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
)

// Role is the hierarchy tier of a user.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleRegionalManager Role = "regional_manager"
	RoleTeamLeader      Role = "team_leader"
	RoleFieldOfficer    Role = "field_officer"
)

// Level returns the numeric depth of the role, admin being 0.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 0
	case RoleRegionalManager:
		return 1
	case RoleTeamLeader:
		return 2
	case RoleFieldOfficer:
		return 3
	}
	return -1
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.Level() >= 0
}

// User is a node in the sales hierarchy.
type User struct {
	ID    id.ID  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Role  Role   `db:"role" json:"role"`

	// Region groups regional managers and their subtree
	Region string `db:"region" json:"region,omitempty"`

	// RegionalManagerID links a team leader upward
	RegionalManagerID *id.ID `db:"regional_manager_id" json:"regionalManagerId,omitempty"`

	// TeamLeaderID links a field officer upward
	TeamLeaderID *id.ID `db:"team_leader_id" json:"teamLeaderId,omitempty"`

	PasswordHash string `db:"password_hash" json:"-"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Normalize canonicalizes identity fields once, at ingestion. Every consumer
// downstream may rely on trimmed names and lowercase emails.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Region = strings.TrimSpace(u.Region)
}

// Validate checks required fields and upward-link consistency.
func (u *User) Validate(ctx context.Context) error {
	if u.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !emailRe.MatchString(u.Email) {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	if !u.Role.Valid() {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", string(u.Role))
	}

	// Upward links belong only to the roles that use them.
	if u.Role != RoleTeamLeader && u.RegionalManagerID != nil {
		return apperror.NewValidation("regionalManagerId is only valid for team leaders").
			WithDetail("field", "regionalManagerId")
	}
	if u.Role != RoleFieldOfficer && u.TeamLeaderID != nil {
		return apperror.NewValidation("teamLeaderId is only valid for field officers").
			WithDetail("field", "teamLeaderId")
	}

	return nil
}
