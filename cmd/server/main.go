package main

import (
	"context"                           // context package is needed for Redis operations
	"freelance_market/internal/api"     // HTTP handlers and routes
	"freelance_market/internal/config"  // Custom package for configuration
	"freelance_market/internal/db"      // Store selection
	"freelance_market/internal/media"   // Profile picture storage
	"freelance_market/internal/service" // Job lifecycle and user directory
	"time"                              // Redis ping timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	stores, err := db.Connect(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if stores.DB == nil {
		// Nothing persists in memory, so start from the sample accounts
		if err := db.Seed(context.Background(), stores.Jobs, stores.Users); err != nil {
			logrus.Fatalf("failed to seed memory store: %v", err)
		}
	}

	// Setup Redis client; an empty address runs without the listing cache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err = redisClient.Ping(ctx).Result() // Test Redis connection
		cancel()
		if err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR is empty; listing cache disabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Jobs:      service.NewJobService(stores.Jobs, stores.Users),
		Users:     service.NewUserService(stores.Users, media.NewStore(cfg.UploadDir), cfg.JWTSecret, cfg.TokenTTL()),
		UserRepo:  stores.Users,
		Redis:     redisClient,
		CacheTTL:  cfg.CacheTTL(),
		JWTSecret: cfg.JWTSecret,
		UploadDir: cfg.UploadDir,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":   cfg.AppPort,  // Listening port
		"driver": cfg.DBDriver, // Store backend
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
