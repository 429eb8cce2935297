package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	appinv "github.com/pressureflow/backend/internal/application/inventory"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/pressureflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockInventoryRepoForConcurrency creates a repository with mocked DB for concurrency tests
func newMockInventoryRepoForConcurrency(t *testing.T) (*GormInventoryItemRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInventoryItemRepository(gormDB), mock, mockDB
}

func newTestItem(t *testing.T, qty, threshold string) *inventory.Item {
	t.Helper()
	item, err := inventory.NewItem("Chloor", "L", decimal.RequireFromString(qty), decimal.RequireFromString(threshold))
	require.NoError(t, err)
	return item
}

func TestSaveWithLock_OptimisticLocking(t *testing.T) {
	t.Run("updates when the stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockInventoryRepoForConcurrency(t)
		defer mockDB.Close()

		item := newTestItem(t, "10", "2")
		item.Version = 3

		mock.ExpectExec(`UPDATE "inventory" SET .* WHERE id = \$8 AND version = \$9`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), item))
		assert.Equal(t, 4, item.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when no row matched", func(t *testing.T) {
		repo, mock, mockDB := newMockInventoryRepoForConcurrency(t)
		defer mockDB.Close()

		item := newTestItem(t, "10", "2")

		mock.ExpectExec(`UPDATE "inventory" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), item)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, item.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passes database errors through", func(t *testing.T) {
		repo, mock, mockDB := newMockInventoryRepoForConcurrency(t)
		defer mockDB.Close()

		item := newTestItem(t, "10", "2")

		mock.ExpectExec(`UPDATE "inventory" SET`).
			WillReturnError(assert.AnError)

		err := repo.SaveWithLock(context.Background(), item)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	repo, mock, mockDB := newMockInventoryRepoForConcurrency(t)
	defer mockDB.Close()

	item := newTestItem(t, "10", "2")
	rows := sqlmock.NewRows([]string{"id", "version", "item_name", "unit", "quantity_on_hand", "threshold_warning"}).
		AddRow(item.ID, 1, "Chloor", "L", "10", "2")

	mock.ExpectQuery(`SELECT \* FROM "inventory" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
		WithArgs(item.ID, 1).
		WillReturnRows(rows)

	found, err := repo.FindByIDForUpdate(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chloor", found.Name)
	assert.True(t, decimal.NewFromInt(10).Equal(found.QuantityOnHand))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWithLock_StaleCopyLoses(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInventoryItemRepository(db)
	ctx := context.Background()

	item := newTestItem(t, "10", "2")
	require.NoError(t, repo.Save(ctx, item))

	first, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)

	_, err = first.Deduct(decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, first))

	_, err = second.Deduct(decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(stored.QuantityOnHand))
	assert.Equal(t, 2, stored.Version)
}

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()

	t.Run("commits every write", func(t *testing.T) {
		db := newTestDB(t)
		item := newTestItem(t, "10", "2")
		require.NoError(t, NewGormInventoryItemRepository(db).Save(ctx, item))

		scope := NewGormTransactionScope(db)
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			locked, err := repos.InventoryRepo().FindByIDForUpdate(ctx, item.ID)
			if err != nil {
				return err
			}
			applied := locked.Adjust(decimal.NewFromInt(5))
			if err := repos.InventoryRepo().SaveWithLock(ctx, locked); err != nil {
				return err
			}
			entry, err := inventory.NewLogEntry(locked.ID, nil, applied, "Handmatige correctie")
			if err != nil {
				return err
			}
			return repos.LogRepo().Append(ctx, entry)
		})
		require.NoError(t, err)

		stored, err := NewGormInventoryItemRepository(db).FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(15).Equal(stored.QuantityOnHand))

		logs, err := NewGormInventoryLogRepository(db).FindByInventory(ctx, item.ID, 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.True(t, decimal.NewFromInt(5).Equal(logs[0].ChangeAmount))
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db := newTestDB(t)
		item := newTestItem(t, "10", "2")
		require.NoError(t, NewGormInventoryItemRepository(db).Save(ctx, item))

		failure := errors.New("log write failed")
		scope := NewGormTransactionScope(db)
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			locked, err := repos.InventoryRepo().FindByIDForUpdate(ctx, item.ID)
			if err != nil {
				return err
			}
			if _, err := locked.Deduct(decimal.NewFromInt(4)); err != nil {
				return err
			}
			if err := repos.InventoryRepo().SaveWithLock(ctx, locked); err != nil {
				return err
			}
			return failure
		})
		assert.ErrorIs(t, err, failure)

		stored, err := NewGormInventoryItemRepository(db).FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10).Equal(stored.QuantityOnHand))
		assert.Equal(t, 1, stored.Version)
	})
}
