package middleware

import (
	"freelance_market/internal/utils" // JWT utility functions
	"net/http"                        // HTTP status codes
	"strings"                         // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by the middleware in this package
const (
	UserIDKey      = "userID"      // uuid.UUID from the token
	AccessLevelKey = "accessLevel" // int role from the token
	ClaimsKey      = "claims"      // *utils.Claims of the token
	ActorKey       = "actor"       // *domain.User loaded by ActorMiddleware
)

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID, err := claims.SubjectID() // Token must name a well-formed user
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(UserIDKey, userID)                  // Store userID in context
		c.Set(AccessLevelKey, claims.AccessLevel) // Store role in context
		c.Set(ClaimsKey, claims)                  // Store decoded claims
		c.Next()                                  // Proceed to the next handler
	}
}
