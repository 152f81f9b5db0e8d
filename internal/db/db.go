// Package db opens the configured store and manages its schema and seed data.
package db

import (
	"fmt"                                  // Error wrapping
	"freelance_market/internal/config"     // Application configuration
	"freelance_market/internal/domain"     // Domain models
	"freelance_market/internal/repository" // Repository implementations

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // Postgres driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Stores bundles the repositories backing the services.
// DB is nil for the in-memory driver.
type Stores struct {
	DB    *gorm.DB
	Jobs  repository.JobRepository
	Users repository.UserRepository
}

// Open connects to the SQL database named by cfg
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("driver %q has no SQL backend", cfg.DBDriver)
	}
	level := logger.Warn // Slow queries and errors only
	if cfg.IsProd {
		level = logger.Error
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // Surface unique violations as gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(level),
	})
}

// Connect returns the repositories for the configured driver
func Connect(cfg *config.Config) (*Stores, error) {
	if cfg.DBDriver == "memory" {
		mem := repository.NewMemoryStore()
		logrus.Warn("Using the in-memory store; data is lost on restart")
		return &Stores{Jobs: mem.Jobs(), Users: mem.Users()}, nil
	}
	gdb, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return &Stores{
		DB:    gdb,
		Jobs:  repository.NewGormJobRepository(gdb),
		Users: repository.NewGormUserRepository(gdb),
	}, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(gdb *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := gdb.AutoMigrate(&domain.User{}, &domain.Job{}, &domain.Bid{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
