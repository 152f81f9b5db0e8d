package api

import (
	"errors"                               // Error matching
	"freelance_market/internal/domain"     // Domain models
	"freelance_market/internal/middleware" // Context keys
	"freelance_market/internal/service"    // Service errors
	"net/http"                             // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Identifiers
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrDuplicateBid),
		errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotFoundOrForbidden):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Unexpected errors are logged and hidden from the client.
func respondError(c *gin.Context, err error, action string, fields logrus.Fields) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(fields).WithField("error", err.Error()).Error(action + " failed")
		c.JSON(status, gin.H{"error": "A server error occurred"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// actorID returns the authenticated user set by the JWT middleware
func actorID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(middleware.UserIDKey)
	uid, _ := id.(uuid.UUID)
	return uid
}

// actor returns the user loaded by ActorMiddleware, nil outside actor routes
func actor(c *gin.Context) *domain.User {
	v, _ := c.Get(middleware.ActorKey)
	u, _ := v.(*domain.User)
	return u
}

// uuidParam parses a path parameter; ok is false when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}
