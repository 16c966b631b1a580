package handlers

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/domain/hierarchy"
	"telstock/internal/infrastructure/http/v1/dto"
)

// UserHandler serves the hierarchy user catalog.
type UserHandler struct {
	*BaseHandler
	users *hierarchy.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, users *hierarchy.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, users: users}
}

// Create registers a new user.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := req.ToUser()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.users.CreateUser(c.Request.Context(), user, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, user)
}

// Update modifies an existing user.
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	userID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.Apply(user); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.users.UpdateUser(c.Request.Context(), user); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// Get returns one user by id.
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// List returns users, optionally filtered by role.
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var role *hierarchy.Role
	if raw := c.Query("role"); raw != "" {
		r := hierarchy.Role(raw)
		role = &r
	}

	users, err := h.users.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, users)
}

// Subordinates returns the full downward closure of one user.
// GET /api/v1/users/:id/subordinates
func (h *UserHandler) Subordinates(c *gin.Context) {
	userID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	subs, err := h.users.SubordinatesOf(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, subs)
}
