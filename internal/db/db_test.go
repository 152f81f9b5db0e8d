package db

import (
	"context"
	"testing"

	"freelance_market/internal/config"
	"freelance_market/internal/domain"
	"freelance_market/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore()
	stale := &domain.Job{UserID: uuid.New(), Title: "old", Status: domain.JobActive}
	require.NoError(t, mem.Jobs().Create(ctx, stale))
	require.NoError(t, mem.Users().Create(ctx, &domain.User{Email: "old@test.com", Password: "x"}))

	require.NoError(t, Seed(ctx, mem.Jobs(), mem.Users()))

	users, err := mem.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(SeedUsers))
	_, err = mem.Users().FindByEmail(ctx, "old@test.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = mem.Jobs().FindByID(ctx, stale.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	alice, err := mem.Users().FindByEmail(ctx, "alice@test.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, alice.AccessLevel)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte(SeedPassword)))

	// Seeding twice starts over rather than failing on duplicates
	require.NoError(t, Seed(ctx, mem.Jobs(), mem.Users()))
}

func TestConnectMemory(t *testing.T) {
	stores, err := Connect(&config.Config{DBDriver: "memory"})
	require.NoError(t, err)
	assert.Nil(t, stores.DB)
	assert.NotNil(t, stores.Jobs)
	assert.NotNil(t, stores.Users)
}

func TestOpenRejectsMemory(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "memory"})
	assert.Error(t, err)
}
