package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_UsageFor(t *testing.T) {
	svc, err := NewService("Oprit reinigen", "", decimal.RequireFromString("1.20"))
	require.NoError(t, err)
	assert.True(t, svc.Active)
	assert.False(t, svc.ConsumesInventory())
	assert.True(t, svc.UsageFor(decimal.NewFromInt(50)).IsZero())

	inventoryID := uuid.New()
	rate := decimal.RequireFromString("0.05")
	require.NoError(t, svc.LinkInventory(&inventoryID, &rate))
	assert.True(t, svc.ConsumesInventory())
	assert.True(t, svc.UsageFor(decimal.NewFromInt(50)).Equal(decimal.RequireFromString("2.5")))

	zero := decimal.Zero
	require.NoError(t, svc.LinkInventory(&inventoryID, &zero))
	assert.False(t, svc.ConsumesInventory())

	negative := decimal.NewFromInt(-1)
	assert.Error(t, svc.LinkInventory(&inventoryID, &negative))
}

func TestCatalogValidation(t *testing.T) {
	_, err := NewService(" ", "", decimal.Zero)
	assert.Error(t, err)

	_, err = NewService("x", "", decimal.NewFromInt(-1))
	assert.Error(t, err)

	item, err := NewUpsellItem("Impregneren", "per terras", decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.True(t, item.Active)

	assert.Error(t, item.Update("Impregneren", "", decimal.NewFromInt(-25)))
	item.SetActive(false)
	assert.False(t, item.Active)
}
