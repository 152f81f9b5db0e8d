package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_port: "9000"
db_driver: postgres
db_host: db.internal
db_port: "5432"
db_user: market
db_name: market
jwt_secret: from-file
cache_ttl_sec: 30
`), 0o600))
	t.Setenv("APP_PORT", "9100")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.AppPort, "environment wins")
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, "host=db.internal user=market password= dbname=market port=5432 sslmode=disable", cfg.DSN())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("bad driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("bad number", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "x")
		t.Setenv("CACHE_TTL_SEC", "soon")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true&charset=utf8mb4", cfg.DSN())
}
