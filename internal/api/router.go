package api

import (
	"freelance_market/internal/middleware" // Auth middleware
	"freelance_market/internal/repository" // Actor lookup
	"freelance_market/internal/service"    // Services
	"time"                                 // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Jobs      *service.JobService
	Users     *service.UserService
	UserRepo  repository.UserRepository // Actor checks
	Redis     *redis.Client             // Nil disables caching
	CacheTTL  time.Duration
	JWTSecret string
	UploadDir string // Served under /uploads when set
}

// NewRouter wires every route onto a gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default() // Gin router instance
	auth := middleware.JWTAuthMiddleware(d.JWTSecret)

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir) // Processed profile pictures
	}

	// Auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/register", RegisterHandler(d.Users, d.Redis))
	authGroup.POST("/signin", SignInHandler(d.Users))
	authGroup.GET("/validate", auth, ValidateHandler())

	// Job routes (protected by JWT)
	jobGroup := r.Group("/job", auth)
	jobGroup.GET("/listings/active", ListActiveJobsHandler(d.Jobs, d.Redis, d.CacheTTL))

	// Routes acting as :userid, which must be the token's user
	own := jobGroup.Group("/:userid", middleware.ActorMiddleware(d.UserRepo, "userid"))
	own.GET("/listings/active", ListOwnedJobsHandler(d.Jobs))
	own.GET("/ongoing", ListOngoingJobsHandler(d.Jobs))
	own.POST("/listings/create", CreateJobHandler(d.Jobs, d.Redis))
	own.PUT("/listings/:id/complete", CompleteJobHandler(d.Jobs, d.Redis))
	own.DELETE("/listings/:id/delete", DeleteJobHandler(d.Jobs, d.Redis))
	own.POST("/listings/:id/bid", PlaceBidHandler(d.Jobs))
	own.GET("/listings/:id/bids", ListBidsHandler(d.Jobs))
	own.PUT("/listings/:id/accept/:freelancerId", AcceptFreelancerHandler(d.Jobs, d.Redis))

	// User directory (protected by JWT)
	userGroup := r.Group("/user", auth)
	userGroup.GET("", ListUsersHandler(d.Users, d.Redis, d.CacheTTL))
	userGroup.GET("/:id", GetUserHandler(d.Users))

	self := userGroup.Group("/:id", middleware.ActorMiddleware(d.UserRepo, "id"))
	self.PUT("/bio", UpdateBioHandler(d.Users, d.Redis))
	self.PUT("/password", UpdatePasswordHandler(d.Users))
	self.PUT("/profile-picture", ProfilePictureHandler(d.Users, d.Redis))
	self.DELETE("", DeleteUserHandler(d.Users, d.Jobs, d.Redis))

	return r
}
