package api

import (
	"freelance_market/internal/middleware" // Context keys
	"freelance_market/internal/service"    // User directory
	"net/http"                             // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// RegisterRequest represents a new account
type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`              // Given name
	LastName    string `json:"lastName" binding:"required"`               // Family name
	Email       string `json:"email" binding:"required,email"`            // Login email
	Password    string `json:"password" binding:"required"`               // Plain password, hashed before storage
	Bio         string `json:"bio"`                                       // Optional bio
	AccessLevel int    `json:"accessLevel" binding:"omitempty,oneof=1 2"` // 1 freelancer, 2 client
}

// SignInRequest represents a login attempt
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// AuthResponse carries a signed token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RegisterHandler creates an account
func RegisterHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: firstName, lastName, a valid email and password are required"})
			return
		}
		user, err := users.Register(c.Request.Context(), service.RegisterInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Password:    req.Password,
			Bio:         req.Bio,
			AccessLevel: req.AccessLevel,
		})
		if err != nil {
			respondError(c, err, "Register", logrus.Fields{"email": req.Email})
			return
		}
		invalidateUsers(rdb)
		logrus.WithFields(logrus.Fields{
			"user_id":      user.ID,          // New user
			"access_level": user.AccessLevel, // Role
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// SignInHandler authenticates a user and returns a JWT token
func SignInHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, user, err := users.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err, "Sign in", logrus.Fields{"email": req.Email})
			return
		}
		logrus.WithField("user_id", user.ID).Info("User signed in")
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// ValidateHandler echoes the claims of a valid token
func ValidateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := c.Get(middleware.ClaimsKey) // Set by JWTAuthMiddleware
		c.JSON(http.StatusOK, gin.H{"decoded": claims})
	}
}
