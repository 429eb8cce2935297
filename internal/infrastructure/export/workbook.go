// Package export writes inventory snapshots as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/pressureflow/backend/internal/domain/inventory"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the inventory rows
const SheetName = "Voorraad"

var headers = []any{"Product", "Eenheid", "Voorraad", "Waarschuwingsgrens", "Status", "Notities", "Bijgewerkt"}

// WorkbookExporter renders inventory items with excelize
type WorkbookExporter struct{}

// NewWorkbookExporter creates a WorkbookExporter
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// WriteInventory writes one header row and one row per item, in the order
// given. Low-stock rows are highlighted.
func (e *WorkbookExporter) WriteInventory(w io.Writer, items []inventory.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lowStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return fmt.Errorf("create low stock style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i := range items {
		item := &items[i]
		row := i + 2
		status := "OK"
		if item.IsLowStock() {
			status = "Laag"
		}
		values := []any{
			item.Name,
			item.Unit,
			item.QuantityOnHand.InexactFloat64(),
			item.ThresholdWarning.InexactFloat64(),
			status,
			item.Notes,
			item.UpdatedAt.Format("2006-01-02 15:04"),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if item.IsLowStock() {
			end, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellStyle(SheetName, start, end, lowStyle); err != nil {
				return fmt.Errorf("style row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 28)
	_ = f.SetColWidth(SheetName, "D", "D", 20)
	_ = f.SetColWidth(SheetName, "F", "F", 40)
	_ = f.SetColWidth(SheetName, "G", "G", 18)
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
