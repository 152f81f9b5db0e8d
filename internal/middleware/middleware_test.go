package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freelance_market/internal/domain"
	"freelance_market/internal/repository"
	"freelance_market/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(users repository.UserRepository) *gin.Engine {
	r := gin.New()
	g := r.Group("/job/:userid", JWTAuthMiddleware(secret), ActorMiddleware(users, "userid"))
	g.GET("/whoami", func(c *gin.Context) {
		actor := c.MustGet(ActorKey).(*domain.User)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "level": c.GetInt(AccessLevelKey)})
	})
	return r
}

func token(t *testing.T, id uuid.UUID, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, int(domain.RoleFreelancer), secret, ttl)
	require.NoError(t, err)
	return tok
}

func TestMiddleware(t *testing.T) {
	users := repository.NewMemoryStore().Users()
	user := &domain.User{FirstName: "Jane", LastName: "Doe", Email: "jane@test.com", Password: "hash"}
	require.NoError(t, users.Create(context.Background(), user))
	ghost := uuid.New()
	r := setupRouter(users)

	tests := []struct {
		name   string
		path   uuid.UUID
		header string
		want   int
	}{
		{"missing header", user.ID, "", http.StatusUnauthorized},
		{"not bearer", user.ID, "Basic abc", http.StatusUnauthorized},
		{"garbage token", user.ID, "Bearer nope", http.StatusUnauthorized},
		{"expired token", user.ID, "Bearer " + token(t, user.ID, -time.Minute), http.StatusUnauthorized},
		{"wrong secret", user.ID, "Bearer " + mustSign(t, user.ID, "other"), http.StatusUnauthorized},
		{"path mismatch", uuid.New(), "Bearer " + token(t, user.ID, time.Hour), http.StatusForbidden},
		{"deleted user", ghost, "Bearer " + token(t, ghost, time.Hour), http.StatusForbidden},
		{"ok", user.ID, "Bearer " + token(t, user.ID, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/job/"+tt.path.String()+"/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func mustSign(t *testing.T, id uuid.UUID, key string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, 1, key, time.Hour)
	require.NoError(t, err)
	return tok
}
