package inventory

import (
	"context"

	"github.com/pressureflow/backend/internal/domain/catalog"
	"github.com/pressureflow/backend/internal/domain/estimate"
	"github.com/pressureflow/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the repositories the
// ledger touches. If fn returns an error the transaction is rolled back,
// otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one underlying database transaction
type TransactionalRepositories interface {
	EstimateRepo() estimate.EstimateRepository
	ServiceRepo() catalog.ServiceRepository
	InventoryRepo() inventory.ItemRepository
	LogRepo() inventory.LogRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Used by unit tests.
type NoOpTransactionScope struct {
	estimateRepo  estimate.EstimateRepository
	serviceRepo   catalog.ServiceRepository
	inventoryRepo inventory.ItemRepository
	logRepo       inventory.LogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	estimateRepo estimate.EstimateRepository,
	serviceRepo catalog.ServiceRepository,
	inventoryRepo inventory.ItemRepository,
	logRepo inventory.LogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		estimateRepo:  estimateRepo,
		serviceRepo:   serviceRepo,
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) EstimateRepo() estimate.EstimateRepository { return s.estimateRepo }
func (s *NoOpTransactionScope) ServiceRepo() catalog.ServiceRepository    { return s.serviceRepo }
func (s *NoOpTransactionScope) InventoryRepo() inventory.ItemRepository   { return s.inventoryRepo }
func (s *NoOpTransactionScope) LogRepo() inventory.LogRepository          { return s.logRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
