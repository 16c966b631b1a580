package dto

import (
	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/domain/hierarchy"
)

// CreateUserRequest creates a hierarchy user.
type CreateUserRequest struct {
	Name              string  `json:"name" binding:"required"`
	Email             string  `json:"email" binding:"required"`
	Password          string  `json:"password" binding:"required"`
	Role              string  `json:"role" binding:"required"`
	Region            string  `json:"region"`
	RegionalManagerID *string `json:"regionalManagerId"`
	TeamLeaderID      *string `json:"teamLeaderId"`
}

// ToUser converts the request into a domain user.
func (r *CreateUserRequest) ToUser() (*hierarchy.User, error) {
	rmID, err := parseOptionalID(r.RegionalManagerID, "regionalManagerId")
	if err != nil {
		return nil, err
	}
	tlID, err := parseOptionalID(r.TeamLeaderID, "teamLeaderId")
	if err != nil {
		return nil, err
	}
	return &hierarchy.User{
		Name:              r.Name,
		Email:             r.Email,
		Role:              hierarchy.Role(r.Role),
		Region:            r.Region,
		RegionalManagerID: rmID,
		TeamLeaderID:      tlID,
	}, nil
}

// UpdateUserRequest updates mutable user fields.
type UpdateUserRequest struct {
	Name              string  `json:"name" binding:"required"`
	Email             string  `json:"email" binding:"required"`
	Role              string  `json:"role" binding:"required"`
	Region            string  `json:"region"`
	RegionalManagerID *string `json:"regionalManagerId"`
	TeamLeaderID      *string `json:"teamLeaderId"`
	IsActive          bool    `json:"isActive"`
}

// Apply copies the request onto an existing user.
func (r *UpdateUserRequest) Apply(u *hierarchy.User) error {
	rmID, err := parseOptionalID(r.RegionalManagerID, "regionalManagerId")
	if err != nil {
		return err
	}
	tlID, err := parseOptionalID(r.TeamLeaderID, "teamLeaderId")
	if err != nil {
		return err
	}
	u.Name = r.Name
	u.Email = r.Email
	u.Role = hierarchy.Role(r.Role)
	u.Region = r.Region
	u.RegionalManagerID = rmID
	u.TeamLeaderID = tlID
	u.IsActive = r.IsActive
	return nil
}

func parseOptionalID(raw *string, field string) (*id.ID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := id.Parse(*raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return &parsed, nil
}

// ParseID parses a path or query id parameter.
func ParseID(raw, field string) (id.ID, error) {
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.Nil, apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return parsed, nil
}
