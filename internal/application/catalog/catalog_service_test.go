package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Service, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.Service, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) Save(ctx context.Context, svc *catalog.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

type MockUpsellItemRepository struct {
	mock.Mock
}

func (m *MockUpsellItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.UpsellItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.UpsellItem), args.Error(1)
}

func (m *MockUpsellItemRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.UpsellItem, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.UpsellItem), args.Error(1)
}

func (m *MockUpsellItemRepository) Save(ctx context.Context, item *catalog.UpsellItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context) ([]inventory.Item, error) {
	args := m.Called(ctx)
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) FindLowStock(ctx context.Context) ([]inventory.Item, error) {
	args := m.Called(ctx)
	return args.Get(0).([]inventory.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *inventory.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	return m.Called(ctx, item).Error(0)
}

// =============================================================================
// Tests
// =============================================================================

func setupCatalogService() (*CatalogService, *MockServiceRepository, *MockUpsellItemRepository, *MockItemRepository) {
	services := new(MockServiceRepository)
	upsells := new(MockUpsellItemRepository)
	items := new(MockItemRepository)
	return NewCatalogService(services, upsells, items, nil), services, upsells, items
}

func TestCatalogService_CreateService(t *testing.T) {
	ctx := context.Background()

	t.Run("links a consumable", func(t *testing.T) {
		svc, services, _, items := setupCatalogService()
		item, err := inventory.NewItem("Groene aanslag reiniger", "liter", decimal.NewFromInt(20), decimal.NewFromInt(5))
		require.NoError(t, err)
		rate := decimal.RequireFromString("0.05")

		items.On("FindByID", ctx, item.ID).Return(item, nil)
		services.On("Save", ctx, mock.AnythingOfType("*catalog.Service")).Return(nil)

		resp, err := svc.CreateService(ctx, CreateServiceRequest{
			Name:              "Terras reinigen",
			PricePerM2:        decimal.RequireFromString("1.20"),
			LinkedInventoryID: &item.ID,
			ChemicalUsageRate: &rate,
		})
		require.NoError(t, err)
		assert.True(t, resp.Active)
		assert.Equal(t, &item.ID, resp.LinkedInventoryID)
		assert.True(t, rate.Equal(*resp.ChemicalUsageRate))
	})

	t.Run("unknown consumable", func(t *testing.T) {
		svc, services, _, items := setupCatalogService()
		id := uuid.New()
		items.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("Inventory item"))

		_, err := svc.CreateService(ctx, CreateServiceRequest{Name: "Gevel", LinkedInventoryID: &id})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		services.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative price", func(t *testing.T) {
		svc, _, _, _ := setupCatalogService()
		_, err := svc.CreateService(ctx, CreateServiceRequest{Name: "Gevel", PricePerM2: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestCatalogService_UpdateService(t *testing.T) {
	ctx := context.Background()
	svc, services, _, _ := setupCatalogService()

	existing, err := catalog.NewService("Oprit", "", decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	itemID := uuid.New()
	rate := decimal.RequireFromString("0.1")
	require.NoError(t, existing.LinkInventory(&itemID, &rate))

	services.On("FindByID", ctx, existing.ID).Return(existing, nil)
	services.On("Save", ctx, existing).Return(nil)

	price := decimal.RequireFromString("1.50")
	resp, err := svc.UpdateService(ctx, existing.ID, UpdateServiceRequest{PricePerM2: &price, UnlinkInventory: true})
	require.NoError(t, err)
	assert.True(t, price.Equal(resp.PricePerM2))
	assert.Equal(t, "Oprit", resp.Name)
	assert.Nil(t, resp.LinkedInventoryID)
	assert.Nil(t, resp.ChemicalUsageRate)
}

func TestCatalogService_DeleteServiceDeactivates(t *testing.T) {
	ctx := context.Background()
	svc, services, _, _ := setupCatalogService()
	existing, err := catalog.NewService("Dak", "", decimal.NewFromInt(3))
	require.NoError(t, err)

	services.On("FindByID", ctx, existing.ID).Return(existing, nil)
	services.On("Save", ctx, mock.MatchedBy(func(s *catalog.Service) bool { return !s.Active })).Return(nil)

	require.NoError(t, svc.DeleteService(ctx, existing.ID))
	services.AssertExpectations(t)
}

func TestCatalogService_ListServices(t *testing.T) {
	ctx := context.Background()
	svc, services, _, _ := setupCatalogService()
	services.On("FindAll", ctx, true).Return([]catalog.Service{}, nil)
	services.On("FindAll", ctx, false).Return([]catalog.Service{{Name: "Oud"}}, nil)

	active, err := svc.ListServices(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListServices(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalogService_Upsells(t *testing.T) {
	ctx := context.Background()
	svc, _, upsells, _ := setupCatalogService()

	upsells.On("Save", ctx, mock.AnythingOfType("*catalog.UpsellItem")).Return(nil)
	created, err := svc.CreateUpsell(ctx, CreateUpsellRequest{Name: "Impregneren", Price: decimal.NewFromInt(25)})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = svc.CreateUpsell(ctx, CreateUpsellRequest{Name: "Fout", Price: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, shared.ErrValidation)

	item, err := catalog.NewUpsellItem("Voegen", "", decimal.NewFromInt(40))
	require.NoError(t, err)
	upsells.On("FindByID", ctx, item.ID).Return(item, nil)

	inactive := false
	updated, err := svc.UpdateUpsell(ctx, item.ID, UpdateUpsellRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.True(t, decimal.NewFromInt(40).Equal(updated.Price))

	missing := uuid.New()
	upsells.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("Upsell item"))
	assert.ErrorIs(t, svc.DeleteUpsell(ctx, missing), shared.ErrNotFound)
}
