package handlers

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/domain/auth"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves login and the current-user endpoint.
type AuthHandler struct {
	*BaseHandler
	auth  *auth.Service
	users *hierarchy.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, authSvc *auth.Service, users *hierarchy.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, auth: authSvc, users: users}
}

// Login authenticates a user and returns an access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Me returns the authenticated user's record.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actorID, _, ok := h.Actor(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), actorID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}
