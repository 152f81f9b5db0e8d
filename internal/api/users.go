package api

import (
	"context"                           // Context for Redis operations
	"freelance_market/internal/service" // User directory
	"freelance_market/internal/utils"   // Cache helpers
	"net/http"                          // HTTP status codes
	"strconv"                           // String conversion
	"time"                              // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const (
	usersPrefix      = "users:"         // Prefix of cached directory pages
	usersGenKey      = "gen:users"      // Generation counter baked into directory keys
	maxPictureBytes  = 5 << 20          // Profile picture upload limit
	pictureFormField = "profilePicture" // Multipart field holding the file
)

// BioRequest represents a bio update
type BioRequest struct {
	Bio string `json:"bio"` // Empty leaves the bio unchanged
}

// PasswordRequest represents a password change
type PasswordRequest struct {
	Password string `json:"password" binding:"required"` // New password
}

// invalidateUsers retires every cached directory page
func invalidateUsers(rdb *redis.Client) {
	ctx := context.Background() // Context for Redis operations
	if err := utils.BumpCacheGeneration(ctx, rdb, usersGenKey); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to bump user cache generation")
	}
	if err := utils.DeleteCachePrefix(ctx, rdb, usersPrefix); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to invalidate user cache")
	}
}

// ListUsersHandler returns a page of the user directory
func ListUsersHandler(users *service.UserService, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		useCache := true                                         // Off when the generation is unknown
		gen, err := utils.CacheGeneration(ctx, rdb, usersGenKey) // Read before the store
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to read user cache generation")
			useCache = false
		}
		// Cache key based on generation and pagination parameters
		cacheKey := usersPrefix + "gen=" + strconv.FormatInt(gen, 10) +
			":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached service.UserPage
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); useCache && err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}

		res, err := users.ListUsers(ctx, page, pageSize)
		if err != nil {
			respondError(c, err, "List users", logrus.Fields{"page": page})
			return
		}
		// Cache the page for future requests
		if useCache {
			if err := utils.SetCache(ctx, rdb, cacheKey, res, ttl); err != nil {
				logrus.WithField("error", err.Error()).Warn("Failed to cache users")
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"users":       res.Users,      // List of users
			"page":        res.Page,       // Current page
			"page_size":   res.PageSize,   // Page size
			"total":       res.Total,      // Total number of users
			"total_pages": res.TotalPages, // Total pages
			"cached":      false,          // Indicate response is not from cache
		})
	}
}

// GetUserHandler returns one user
func GetUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		user, err := users.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Get user", logrus.Fields{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateBioHandler replaces the caller's bio
func UpdateBioHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BioRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := users.UpdateBio(c.Request.Context(), actorID(c), req.Bio)
		if err != nil {
			respondError(c, err, "Update bio", logrus.Fields{"user_id": actorID(c)})
			return
		}
		invalidateUsers(rdb)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdatePasswordHandler changes the caller's password
func UpdatePasswordHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := users.UpdatePassword(c.Request.Context(), actorID(c), req.Password); err != nil {
			respondError(c, err, "Update password", logrus.Fields{"user_id": actorID(c)})
			return
		}
		logrus.WithField("user_id", actorID(c)).Info("Password changed")
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

// DeleteUserHandler removes the caller's account and withdraws their open jobs
func DeleteUserHandler(users *service.UserService, jobs *service.JobService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := users.DeleteUser(ctx, actorID(c)); err != nil {
			respondError(c, err, "Delete user", logrus.Fields{"user_id": actorID(c)})
			return
		}
		invalidateUsers(rdb)
		removed, err := jobs.DeleteOwnedActiveJobs(ctx, actorID(c)) // Open jobs lose their client
		invalidateListings(rdb)                                     // Listings carried the client name
		if err != nil {
			respondError(c, err, "Withdraw jobs of deleted user", logrus.Fields{"user_id": actorID(c)})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":      actorID(c), // Deleted user
			"jobs_removed": removed,    // Withdrawn active jobs
		}).Info("User deleted")
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// ProfilePictureHandler stores an uploaded picture as the caller's avatar
func ProfilePictureHandler(users *service.UserService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPictureBytes+1<<20) // Room for multipart headers
		header, err := c.FormFile(pictureFormField)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A profilePicture file of at most 5MB is required"})
			return
		}
		if header.Size > maxPictureBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Profile picture must be at most 5MB"})
			return
		}
		f, err := header.Open()
		if err != nil {
			respondError(c, err, "Open upload", logrus.Fields{"user_id": actorID(c)})
			return
		}
		defer f.Close()

		user, err := users.SetProfilePicture(c.Request.Context(), actorID(c), f, header.Filename)
		if err != nil {
			respondError(c, err, "Set profile picture", logrus.Fields{"user_id": actorID(c)})
			return
		}
		invalidateUsers(rdb)
		c.JSON(http.StatusOK, gin.H{"profilePicture": user.ProfilePicture})
	}
}
