package inventory

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// DefaultLogLimit caps the audit trail returned per item
const DefaultLogLimit = 100

// WorkbookExporter writes an inventory snapshot as a spreadsheet
type WorkbookExporter interface {
	WriteInventory(w io.Writer, items []inventory.Item) error
}

// InventoryService handles inventory-related business operations
type InventoryService struct {
	itemRepo inventory.ItemRepository
	logRepo  inventory.LogRepository
	ledger   *Ledger
	exporter WorkbookExporter
	logger   *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	itemRepo inventory.ItemRepository,
	logRepo inventory.LogRepository,
	ledger *Ledger,
	exporter WorkbookExporter,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		itemRepo: itemRepo,
		logRepo:  logRepo,
		ledger:   ledger,
		exporter: exporter,
		logger:   logger,
	}
}

// List returns every item ordered by name
func (s *InventoryService) List(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// GetByID retrieves an item
func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Create adds a new stocked item. The opening quantity is not logged.
func (s *InventoryService) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	item, err := inventory.NewItem(req.Name, req.Unit, req.QuantityOnHand, req.ThresholdWarning)
	if err != nil {
		return nil, err
	}
	item.Notes = req.Notes

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Update changes the descriptive fields of an item
func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, unit, threshold, notes := item.Name, item.Unit, item.ThresholdWarning, item.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Unit != nil {
		unit = *req.Unit
	}
	if req.ThresholdWarning != nil {
		threshold = *req.ThresholdWarning
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := item.Update(name, unit, threshold, notes); err != nil {
		return nil, err
	}

	if err := s.itemRepo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// Adjust applies a manual stock correction through the ledger
func (s *InventoryService) Adjust(ctx context.Context, id uuid.UUID, req AdjustRequest) (*AdjustResponse, error) {
	result, err := s.ledger.Adjust(ctx, id, req.Amount, req.Reason)
	if err != nil {
		return nil, err
	}
	resp := &AdjustResponse{
		Item:    ToItemResponse(result.Item),
		Applied: result.Applied,
	}
	if result.Entry != nil {
		entry := ToLogEntryResponse(result.Entry)
		resp.Entry = &entry
	}
	return resp, nil
}

// Logs returns the newest audit entries of an item
func (s *InventoryService) Logs(ctx context.Context, id uuid.UUID, limit int) ([]LogEntryResponse, error) {
	if _, err := s.itemRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > DefaultLogLimit {
		limit = DefaultLogLimit
	}
	entries, err := s.logRepo.FindByInventory(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LogEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLogEntryResponse(&entries[i])
	}
	return out, nil
}

// LowStock returns items at or below their warning threshold
func (s *InventoryService) LowStock(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToItemResponses(items), nil
}

// Export writes all items as a workbook to w
func (s *InventoryService) Export(ctx context.Context, w io.Writer) error {
	items, err := s.itemRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	if err := s.exporter.WriteInventory(w, items); err != nil {
		s.logger.Error("Inventory export failed", zap.Error(err))
		return err
	}
	return nil
}
