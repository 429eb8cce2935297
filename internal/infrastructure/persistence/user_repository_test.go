package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/identity"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	admin, err := identity.NewUser("Sanne", "Sanne@PressureFlow.nl", "geheim123", identity.RoleAdmin)
	require.NoError(t, err)
	tech, err := identity.NewUser("Bram", "bram@pressureflow.nl", "spuiten42", identity.RoleTechnician)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, admin))
	require.NoError(t, repo.Save(ctx, tech))

	t.Run("find by email ignores case", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "SANNE@pressureflow.nl")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, found.ID)
		assert.Equal(t, identity.RoleAdmin, found.Role)
		assert.True(t, found.VerifyPassword("geheim123"))

		_, err = repo.FindByEmail(ctx, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tech.ID)
		require.NoError(t, err)
		assert.Equal(t, "bram@pressureflow.nl", found.Email)
		assert.Nil(t, found.LastLoginAt)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists and count", func(t *testing.T) {
		ok, err := repo.ExistsByEmail(ctx, "BRAM@pressureflow.nl")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByEmail(ctx, "nobody@pressureflow.nl")
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("save updates an existing user", func(t *testing.T) {
		tech.RecordLogin(time.Date(2026, 4, 2, 7, 30, 0, 0, time.UTC))
		require.NoError(t, repo.Save(ctx, tech))

		found, err := repo.FindByID(ctx, tech.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LastLoginAt)
		assert.True(t, found.LastLoginAt.Equal(*tech.LastLoginAt))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Bram", all[0].Name)
	})
}
