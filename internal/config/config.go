package config

import (
	"fmt"     // Error wrapping
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // Durations derived from settings

	"github.com/joho/godotenv"   // For loading .env files
	"github.com/sirupsen/logrus" // Logging library
	"gopkg.in/yaml.v3"           // Optional config file
)

// Config holds the application configuration
type Config struct {
	AppPort       string `yaml:"app_port"`        // Application port
	DBDriver      string `yaml:"db_driver"`       // mysql, postgres or memory
	DBUser        string `yaml:"db_user"`         // Database user
	DBPassword    string `yaml:"db_password"`     // Database password
	DBHost        string `yaml:"db_host"`         // Database host
	DBPort        string `yaml:"db_port"`         // Database port
	DBName        string `yaml:"db_name"`         // Database name
	DBSSLMode     string `yaml:"db_sslmode"`      // Postgres sslmode
	JWTSecret     string `yaml:"jwt_secret"`      // JWT secret key
	JWTExpiresMin int    `yaml:"jwt_expires_min"` // Token lifetime in minutes
	RedisAddr     string `yaml:"redis_addr"`      // Redis server address, empty disables caching
	RedisPass     string `yaml:"redis_pass"`      // Redis password
	RedisDB       int    `yaml:"redis_db"`        // Redis database number
	CacheTTLSec   int    `yaml:"cache_ttl_sec"`   // Listing cache lifetime
	UploadDir     string `yaml:"upload_dir"`      // Profile picture directory
	IsProd        bool   `yaml:"is_prod"`         // Is production environment
}

// defaults applied before the config file and environment
func defaults() Config {
	return Config{
		AppPort:       "8080",
		DBDriver:      "mysql",
		DBHost:        "127.0.0.1",
		DBPort:        "3306",
		DBSSLMode:     "disable",
		JWTExpiresMin: 60,
		CacheTTLSec:   60,
		UploadDir:     "./uploads",
	}
}

// LoadConfig loads configuration from .env, CONFIG_FILE and the environment.
// It exits the process on a malformed config file.
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	cfg, err := Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Load builds the configuration from an optional YAML file and the environment.
// Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	str(&cfg.AppPort, "APP_PORT")
	str(&cfg.DBDriver, "DB_DRIVER")
	str(&cfg.DBUser, "DB_USER")
	str(&cfg.DBPassword, "DB_PASSWORD")
	str(&cfg.DBHost, "DB_HOST")
	str(&cfg.DBPort, "DB_PORT")
	str(&cfg.DBName, "DB_NAME")
	str(&cfg.DBSSLMode, "DB_SSLMODE")
	str(&cfg.JWTSecret, "JWT_SECRET")
	str(&cfg.RedisAddr, "REDIS_ADDR")
	str(&cfg.RedisPass, "REDIS_PASS")
	str(&cfg.UploadDir, "UPLOAD_DIR")
	for key, dst := range map[string]*int{
		"JWT_EXPIRES_MIN": &cfg.JWTExpiresMin,
		"REDIS_DB":        &cfg.RedisDB,
		"CACHE_TTL_SEC":   &cfg.CacheTTLSec,
	} {
		if err := num(dst, key); err != nil {
			return nil, err
		}
	}
	if v, ok := os.LookupEnv("IS_PROD"); ok {
		cfg.IsProd = v == "true" // Is production environment
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return &cfg, nil
}

func str(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func num(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

// DSN returns the connection string for the configured SQL driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// TokenTTL is the lifetime of issued tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresMin) * time.Minute
}

// CacheTTL is the lifetime of cached listings
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}
