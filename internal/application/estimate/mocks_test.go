package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/pressureflow/backend/internal/application/inventory"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/partner"
	"github.com/pressureflow/backend/internal/domain/settings"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/pressureflow/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockEstimateRepository is a mock implementation of EstimateRepository
type MockEstimateRepository struct {
	mock.Mock
}

func (m *MockEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimate.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimate.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) FindAll(ctx context.Context, filter estimate.Filter) ([]estimate.Estimate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]estimate.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) Save(ctx context.Context, e *estimate.Estimate) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEstimateRepository) SaveWithLock(ctx context.Context, e *estimate.Estimate) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEstimateRepository) CountByStatus(ctx context.Context, status estimate.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEstimateRepository) SumTotalsByStatuses(ctx context.Context, statuses []estimate.Status, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, statuses, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockEstimateRepository) ExistsByCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID)
	return args.Bool(0), args.Error(1)
}

// MockPhotoRepository is a mock implementation of PhotoRepository
type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimate.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimate.Photo), args.Error(1)
}

func (m *MockPhotoRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]estimate.Photo, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]estimate.Photo), args.Error(1)
}

func (m *MockPhotoRepository) Save(ctx context.Context, photo *estimate.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockPhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Customer, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *partner.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockServiceRepository is a mock implementation of ServiceRepository
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

// MockUpsellItemRepository is a mock implementation of UpsellItemRepository
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

// =============================================================================
// Mock Collaborators
// =============================================================================

// MockCompleter is a mock implementation of Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, estimateID uuid.UUID) (*appinventory.CompletionResult, error) {
	args := m.Called(ctx, estimateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinventory.CompletionResult), args.Error(1)
}

// MockDocumentRenderer is a mock implementation of DocumentRenderer
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) Render(ctx context.Context, snap printing.Snapshot) (*printing.RenderResult, error) {
	args := m.Called(ctx, snap)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.RenderResult), args.Error(1)
}

// MockSettingsProvider is a mock implementation of SettingsProvider
type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) Current(ctx context.Context) (settings.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.Settings), args.Error(1)
}

// MockPhotoStorage is a mock implementation of PhotoStorage
type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockPhotoStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockPhotoStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
