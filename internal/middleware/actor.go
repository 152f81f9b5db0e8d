package middleware

import (
	"errors"                               // Error matching
	"freelance_market/internal/repository" // User lookup
	"net/http"                             // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // User identifiers
	"github.com/sirupsen/logrus" // Logging library
)

// ActorMiddleware binds the acting user for routes that name the caller in the path.
// The path parameter must match the token's user and that user must still exist.
func ActorMiddleware(users repository.UserRepository, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenID, ok := c.Get(UserIDKey) // Set by JWTAuthMiddleware
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		pathID, err := uuid.Parse(c.Param(param))
		if err != nil || pathID != tokenID.(uuid.UUID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token does not match the requested user"})
			return
		}
		user, err := users.FindByID(c.Request.Context(), pathID) // Re-check the account on each request
		if errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User no longer exists"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": pathID,      // Acting user
				"error":   err.Error(), // Error message
			}).Error("Actor lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "A server error occurred"})
			return
		}
		c.Set(ActorKey, user) // Store the acting user in context
		c.Next()
	}
}
