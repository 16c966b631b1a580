// Package handlers provides the HTTP handlers for API v1.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telstock/internal/core/apperror"
	"telstock/internal/core/appctx"
	"telstock/internal/core/id"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/infrastructure/http/v1/dto"
	"telstock/internal/infrastructure/storage/postgres"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates a JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the gin context and aborts. The JSON
// response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Actor returns the acting user's id and role from the request context.
func (h *BaseHandler) Actor(c *gin.Context) (id.ID, hierarchy.Role, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil, "", false
	}
	actorID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid token subject"))
		return id.Nil, "", false
	}
	return actorID, hierarchy.Role(user.Role), true
}

// OK sends a 200 response with data in the success envelope.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.respond(c, http.StatusOK, dto.OK(data))
}

// Created sends a 201 response with data in the success envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.respond(c, http.StatusCreated, dto.OK(data))
}

// Success sends a data-free success message.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	h.respond(c, http.StatusOK, dto.OKMessage(message))
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	h.completeIdempotency(c, http.StatusNoContent, "", nil)
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) respond(c *gin.Context, status int, body dto.Response) {
	h.completeIdempotency(c, status, "application/json", body)
	c.JSON(status, body)
}

// completeIdempotency stores the response under the request's
// idempotency key with the same HTTP semantics for replay.
func (h *BaseHandler) completeIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key, exists := c.Get("idempotency_key")
	if !exists {
		return
	}
	store, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	if s, ok := store.(*postgres.IdempotencyStore); ok && s != nil {
		_ = s.CompleteKey(c.Request.Context(), key.(string), statusCode, contentType, response)
	}
}
