package utils

import (
	"fmt"  // Error wrapping
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // User identifiers
)

// Claims carried by every access token
type Claims struct {
	UserID               string `json:"userId"`      // Subject user ID
	AccessLevel          int    `json:"accessLevel"` // Role at signing time
	jwt.RegisteredClaims                            // Standard JWT claims
}

// GenerateJWT creates a token for a user that expires after ttl
func GenerateJWT(userID uuid.UUID, accessLevel int, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      userID.String(), // Custom claim for user ID
		AccessLevel: accessLevel,     // Custom claim for role
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a token string, rejecting non-HMAC algorithms
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil // Return the secret key for validation
	})
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	return nil, jwt.ErrSignatureInvalid
}

// SubjectID returns the user ID claim as a UUID
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}
