package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormServiceRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormServiceRepository(db)
	ctx := context.Background()

	terras, err := catalog.NewService("Terras reinigen", "Hogedruk en nabehandeling", decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	chemicalID := uuid.New()
	rate := decimal.RequireFromString("0.05")
	require.NoError(t, terras.LinkInventory(&chemicalID, &rate))

	gevel, err := catalog.NewService("Gevel reinigen", "", decimal.RequireFromString("4.00"))
	require.NoError(t, err)
	gevel.SetActive(false)

	require.NoError(t, repo.Save(ctx, terras))
	require.NoError(t, repo.Save(ctx, gevel))

	t.Run("round trips the inventory link", func(t *testing.T) {
		found, err := repo.FindByID(ctx, terras.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LinkedInventoryID)
		assert.Equal(t, chemicalID, *found.LinkedInventoryID)
		require.NotNil(t, found.ChemicalUsageRate)
		assert.True(t, rate.Equal(*found.ChemicalUsageRate))
		assert.True(t, found.ConsumesInventory())

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inactive services are filtered on request", func(t *testing.T) {
		all, err := repo.FindAll(ctx, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Gevel reinigen", all[0].Name)
		assert.False(t, all[0].Active)

		active, err := repo.FindAll(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, terras.ID, active[0].ID)
	})

	t.Run("find by ids", func(t *testing.T) {
		list, err := repo.FindByIDs(ctx, []uuid.UUID{terras.ID, gevel.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("unlinking clears both columns", func(t *testing.T) {
		require.NoError(t, terras.LinkInventory(nil, nil))
		require.NoError(t, repo.Save(ctx, terras))

		found, err := repo.FindByID(ctx, terras.ID)
		require.NoError(t, err)
		assert.Nil(t, found.LinkedInventoryID)
		assert.Nil(t, found.ChemicalUsageRate)
	})
}

func TestGormUpsellItemRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUpsellItemRepository(db)
	ctx := context.Background()

	impregneren, err := catalog.NewUpsellItem("Impregneren", "Beschermlaag na reiniging", decimal.NewFromInt(85))
	require.NoError(t, err)
	goten, err := catalog.NewUpsellItem("Dakgoten", "", decimal.NewFromInt(60))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, impregneren))
	require.NoError(t, repo.Save(ctx, goten))

	goten.SetActive(false)
	require.NoError(t, repo.Save(ctx, goten))

	found, err := repo.FindByID(ctx, impregneren.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(85).Equal(found.Price))

	active, err := repo.FindAll(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Impregneren", active[0].Name)

	all, err := repo.FindAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
