package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/estimate"
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
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.Service, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) Save(ctx context.Context, s *catalog.Service) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
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
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SaveWithLock(ctx context.Context, item *inventory.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Append(ctx context.Context, entry *inventory.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogRepository) FindByInventory(ctx context.Context, inventoryID uuid.UUID, limit int) ([]inventory.LogEntry, error) {
	args := m.Called(ctx, inventoryID, limit)
	return args.Get(0).([]inventory.LogEntry), args.Error(1)
}

func (m *MockLogRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]inventory.LogEntry, error) {
	args := m.Called(ctx, estimateID)
	return args.Get(0).([]inventory.LogEntry), args.Error(1)
}

// =============================================================================
// Fixtures
// =============================================================================

type ledgerFixture struct {
	estimates *MockEstimateRepository
	services  *MockServiceRepository
	items     *MockItemRepository
	logs      *MockLogRepository
	ledger    *Ledger
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		estimates: new(MockEstimateRepository),
		services:  new(MockServiceRepository),
		items:     new(MockItemRepository),
		logs:      new(MockLogRepository),
	}
	scope := NewNoOpTransactionScope(f.estimates, f.services, f.items, f.logs)
	f.ledger = NewLedger(scope, nil)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func linkedService(t *testing.T, itemID uuid.UUID, rate string) catalog.Service {
	t.Helper()
	svc, err := catalog.NewService("Terras reinigen", "", dec("1.20"))
	require.NoError(t, err)
	r := dec(rate)
	require.NoError(t, svc.LinkInventory(&itemID, &r))
	return *svc
}

func estimateWithLine(t *testing.T, status estimate.Status, serviceID uuid.UUID, sqm string) *estimate.Estimate {
	t.Helper()
	est, err := estimate.NewEstimate(uuid.New(), uuid.New(), status, nil, "",
		[]estimate.LineDraft{{ServiceID: &serviceID, Description: "Terras", SquareMeters: dec(sqm), UnitPrice: dec("1.20")}},
		nil)
	require.NoError(t, err)
	return est
}

func stockItem(t *testing.T, qty string) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem("Groene aanslag reiniger", "liter", dec(qty), dec("2"))
	require.NoError(t, err)
	return item
}

// =============================================================================
// Complete
// =============================================================================

func TestLedger_Complete_DeductsAndLogs(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	item := stockItem(t, "10")
	svc := linkedService(t, item.ID, "0.05")
	est := estimateWithLine(t, estimate.StatusAkkoord, svc.ID, "50")

	f.estimates.On("FindByIDForUpdate", ctx, est.ID).Return(est, nil)
	f.services.On("FindByIDs", ctx, []uuid.UUID{svc.ID}).Return([]catalog.Service{svc}, nil)
	f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
	f.items.On("SaveWithLock", ctx, item).Return(nil)
	f.logs.On("Append", ctx, mock.MatchedBy(func(e *inventory.LogEntry) bool {
		return e.InventoryID == item.ID &&
			e.ChangeAmount.Equal(dec("-2.5")) &&
			*e.EstimateID == est.ID &&
			e.Reason == "Auto-aftrek klus voltooid (50 m²)"
	})).Return(nil)
	f.estimates.On("SaveWithLock", ctx, mock.MatchedBy(func(e *estimate.Estimate) bool {
		return e.Status == estimate.StatusVoltooid
	})).Return(nil)

	result, err := f.ledger.Complete(ctx, est.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
	require.Len(t, result.Deductions, 1)
	assert.True(t, result.Deductions[0].Applied.Equal(dec("2.5")))
	assert.True(t, item.QuantityOnHand.Equal(dec("7.5")))
	assert.Equal(t, estimate.StatusVoltooid, result.Estimate.Status)

	f.estimates.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.logs.AssertExpectations(t)
}

func TestLedger_Complete_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	// 140 m² x 0.05 = 7 liters needed, 5 on hand
	item := stockItem(t, "5")
	svc := linkedService(t, item.ID, "0.05")
	est := estimateWithLine(t, estimate.StatusOfferte, svc.ID, "140")

	f.estimates.On("FindByIDForUpdate", ctx, est.ID).Return(est, nil)
	f.services.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Service{svc}, nil)
	f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
	f.items.On("SaveWithLock", ctx, item).Return(nil)
	f.logs.On("Append", ctx, mock.MatchedBy(func(e *inventory.LogEntry) bool {
		return e.ChangeAmount.Equal(dec("-5"))
	})).Return(nil)
	f.estimates.On("SaveWithLock", ctx, est).Return(nil)

	result, err := f.ledger.Complete(ctx, est.ID)
	require.NoError(t, err)
	require.Len(t, result.Deductions, 1)
	d := result.Deductions[0]
	assert.True(t, d.Clamped())
	assert.True(t, d.Requested.Equal(dec("7")))
	assert.True(t, d.Applied.Equal(dec("5")))
	assert.True(t, item.QuantityOnHand.IsZero())
	f.logs.AssertNumberOfCalls(t, "Append", 1)
}

func TestLedger_Complete_AlreadyCompletedIsNoOp(t *testing.T) {
	for _, status := range []estimate.Status{estimate.StatusVoltooid, estimate.StatusFactuur, estimate.StatusBetaald} {
		t.Run(status.String(), func(t *testing.T) {
			ctx := context.Background()
			f := newLedgerFixture()

			est := estimateWithLine(t, estimate.StatusAkkoord, uuid.New(), "10")
			est.Status = status

			f.estimates.On("FindByIDForUpdate", ctx, est.ID).Return(est, nil)

			result, err := f.ledger.Complete(ctx, est.ID)
			require.NoError(t, err)
			assert.True(t, result.AlreadyCompleted)
			assert.Empty(t, result.Deductions)
			assert.Equal(t, status, est.Status)

			f.services.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
			f.items.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
			f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			f.estimates.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		})
	}
}

func TestLedger_Complete_EmptyStockWritesNoLog(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	item := stockItem(t, "0")
	svc := linkedService(t, item.ID, "0.05")
	est := estimateWithLine(t, estimate.StatusAkkoord, svc.ID, "20")

	f.estimates.On("FindByIDForUpdate", ctx, est.ID).Return(est, nil)
	f.services.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Service{svc}, nil)
	f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
	f.estimates.On("SaveWithLock", ctx, est).Return(nil)

	result, err := f.ledger.Complete(ctx, est.ID)
	require.NoError(t, err)
	require.Len(t, result.Deductions, 1)
	assert.True(t, result.Deductions[0].Applied.IsZero())
	f.items.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedger_Complete_SkipsMissingItemAndUnlinkedLines(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	missingItemID := uuid.New()
	svc := linkedService(t, missingItemID, "0.05")
	plain, err := catalog.NewService("Gevel", "", dec("2"))
	require.NoError(t, err)

	est, err := estimate.NewEstimate(uuid.New(), uuid.New(), estimate.StatusConcept, nil, "",
		[]estimate.LineDraft{
			{ServiceID: &svc.ID, Description: "Terras", SquareMeters: dec("30"), UnitPrice: dec("1.20")},
			{ServiceID: &plain.ID, Description: "Gevel", SquareMeters: dec("30"), UnitPrice: dec("2")},
			{Description: "Vrije regel", SquareMeters: dec("1"), UnitPrice: dec("10")},
		}, nil)
	require.NoError(t, err)

	f.estimates.On("FindByIDForUpdate", ctx, est.ID).Return(est, nil)
	f.services.On("FindByIDs", ctx, []uuid.UUID{svc.ID, plain.ID}).Return([]catalog.Service{svc, *plain}, nil)
	f.items.On("FindByIDForUpdate", ctx, missingItemID).Return(nil, shared.NewNotFoundError("Inventory item"))
	f.estimates.On("SaveWithLock", ctx, est).Return(nil)

	result, err := f.ledger.Complete(ctx, est.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Deductions)
	assert.Equal(t, estimate.StatusVoltooid, est.Status)
	f.items.AssertNumberOfCalls(t, "FindByIDForUpdate", 1)
}

func TestLedger_Complete_ConflictAborts(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	item := stockItem(t, "10")
	svc := linkedService(t, item.ID, "0.1")
	est := estimateWithLine(t, estimate.StatusAkkoord, svc.ID, "10")

	f.estimates.On("FindByIDForUpdate", ctx, est.ID).Return(est, nil)
	f.services.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Service{svc}, nil)
	f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
	f.items.On("SaveWithLock", ctx, item).Return(shared.ErrConcurrencyConflict)

	result, err := f.ledger.Complete(ctx, est.ID)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	f.estimates.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestLedger_Complete_EstimateNotFound(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	id := uuid.New()

	f.estimates.On("FindByIDForUpdate", ctx, id).Return(nil, shared.NewNotFoundError("Estimate"))

	_, err := f.ledger.Complete(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// =============================================================================
// Adjust
// =============================================================================

func TestLedger_Adjust(t *testing.T) {
	tests := []struct {
		name        string
		start       string
		amount      string
		reason      string
		wantApplied string
		wantQty     string
		wantReason  string
	}{
		{"restock", "3", "20", "Levering", "20", "23", "Levering"},
		{"correction down", "10", "-4", "", "-4", "6", inventory.DefaultAdjustmentReason},
		{"clamped", "3", "-10", "Lekkage", "-3", "0", "Lekkage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newLedgerFixture()
			item := stockItem(t, tt.start)

			f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)
			f.items.On("SaveWithLock", ctx, item).Return(nil)
			f.logs.On("Append", ctx, mock.MatchedBy(func(e *inventory.LogEntry) bool {
				return e.ChangeAmount.Equal(dec(tt.wantApplied)) && e.Reason == tt.wantReason && e.EstimateID == nil
			})).Return(nil)

			result, err := f.ledger.Adjust(ctx, item.ID, dec(tt.amount), tt.reason)
			require.NoError(t, err)
			assert.True(t, result.Applied.Equal(dec(tt.wantApplied)))
			assert.True(t, item.QuantityOnHand.Equal(dec(tt.wantQty)))
			require.NotNil(t, result.Entry)
			f.logs.AssertExpectations(t)
		})
	}
}

func TestLedger_Adjust_NothingToRemove(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	item := stockItem(t, "0")

	f.items.On("FindByIDForUpdate", ctx, item.ID).Return(item, nil)

	result, err := f.ledger.Adjust(ctx, item.ID, dec("-2"), "")
	require.NoError(t, err)
	assert.True(t, result.Applied.IsZero())
	assert.Nil(t, result.Entry)
	f.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedger_Adjust_ZeroAmountRejected(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.ledger.Adjust(context.Background(), uuid.New(), decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
