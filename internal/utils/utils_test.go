package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	id := uuid.New()
	tok, err := GenerateJWT(id, 2, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, "secret")
	require.NoError(t, err)
	got, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, 2, claims.AccessLevel)

	_, err = ParseJWT(tok, "other")
	assert.Error(t, err)
}

func TestParseJWTRejectsNone(t *testing.T) {
	claims := Claims{UserID: uuid.NewString()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseJWT(tok, "secret")
	assert.Error(t, err)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)

	type payload struct {
		Name string `json:"name"`
	}
	var got payload
	found, err := GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k", payload{Name: "jobs"}, time.Minute))
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "jobs", got.Name)

	require.NoError(t, DeleteCache(ctx, rdb, "k"))
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteCachePrefix(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)
	for _, k := range []string{"jobs:active:a", "jobs:active:b", "users:1"} {
		require.NoError(t, SetCache(ctx, rdb, k, 1, time.Minute))
	}

	require.NoError(t, DeleteCachePrefix(ctx, rdb, "jobs:active:"))
	keys, err := rdb.Keys(ctx, "*").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"users:1"}, keys)
}

func TestCacheGeneration(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)

	gen, err := CacheGeneration(ctx, rdb, "gen:jobs")
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, BumpCacheGeneration(ctx, rdb, "gen:jobs"))
	require.NoError(t, BumpCacheGeneration(ctx, rdb, "gen:jobs"))
	gen, err = CacheGeneration(ctx, rdb, "gen:jobs")
	require.NoError(t, err)
	assert.EqualValues(t, 2, gen)
}

func TestNilCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	var v int
	found, err := GetCache(ctx, nil, "k", &v)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", 1, time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
	assert.NoError(t, DeleteCachePrefix(ctx, nil, "k"))
	assert.NoError(t, BumpCacheGeneration(ctx, nil, "k"))
	gen, err := CacheGeneration(ctx, nil, "k")
	assert.NoError(t, err)
	assert.Zero(t, gen)
}
