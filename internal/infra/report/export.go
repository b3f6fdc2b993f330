// Package report reads and writes the plant's spreadsheets.
package report

import (
	"bytes"
	"fmt"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04"

// writeSheet renders header + rows into the active sheet and returns the xlsx bytes.
func writeSheet(header []any, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func YardStockXLSX(stock []yard.Stock) ([]byte, error) {
	header := []any{"block_type_id", "block_type", "quantity", "updated_at"}
	rows := make([][]any, 0, len(stock))
	for _, s := range stock {
		rows = append(rows, []any{s.BlockTypeID, s.BlockTypeName, s.CurrentQuantity, s.UpdatedAt.Format(timeLayout)})
	}
	return writeSheet(header, rows)
}

func MovementsXLSX(mv []yard.Movement) ([]byte, error) {
	header := []any{"id", "date", "block_type", "type", "quantity", "reference"}
	rows := make([][]any, 0, len(mv))
	for _, m := range mv {
		rows = append(rows, []any{m.ID, m.CreatedAt.Format(timeLayout), m.BlockTypeName, string(m.Type), m.Quantity, m.Reference})
	}
	return writeSheet(header, rows)
}

// MaterialsXLSX lists raw materials with their average price; low ones are flagged.
func MaterialsXLSX(ms []materials.RawMaterial) ([]byte, error) {
	header := []any{"material_id", "name", "unit", "stock", "min_stock_alert", "average_unit_price", "low"}
	rows := make([][]any, 0, len(ms))
	for _, m := range ms {
		low := ""
		if m.IsLow() {
			low = "YES"
		}
		rows = append(rows, []any{
			m.ID, m.Name, string(m.Unit),
			m.CurrentStock.String(), m.MinStockAlert.String(), m.AverageUnitPrice.String(), low,
		})
	}
	return writeSheet(header, rows)
}
