package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PurchaseColumns is the expected header of a purchase import file.
var PurchaseColumns = []string{"date", "supplier_id", "material_id", "invoice", "quantity", "unit_price"}

var ErrBadFile = errors.New("report: unreadable purchase file")

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02.01.2006", "01-02-06"}

// RowError points at the spreadsheet row (1-based, header is row 1) that failed.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

type PurchaseBooker interface {
	ReceivePurchase(ctx context.Context, in ledger.PurchaseInput) (*ledger.PurchaseResult, error)
}

// ImportPurchases books every data row as its own purchase, in file order.
// It stops at the first failing row; rows before it stay booked.
func ImportPurchases(ctx context.Context, b PurchaseBooker, data []byte) (int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadFile, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadFile, err)
	}
	if len(rows) < 2 {
		return 0, fmt.Errorf("%w: no data rows", ErrBadFile)
	}
	if len(rows[0]) < len(PurchaseColumns) {
		return 0, fmt.Errorf("%w: expected columns %s", ErrBadFile, strings.Join(PurchaseColumns, ", "))
	}

	booked := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		in, err := parsePurchaseRow(row)
		if err != nil {
			return booked, &RowError{Row: i + 1, Err: err}
		}
		if _, err := b.ReceivePurchase(ctx, in); err != nil {
			return booked, &RowError{Row: i + 1, Err: err}
		}
		booked++
	}
	return booked, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parsePurchaseRow(row []string) (ledger.PurchaseInput, error) {
	var in ledger.PurchaseInput
	if len(row) < len(PurchaseColumns) {
		return in, fmt.Errorf("%w: expected %d columns, got %d", ledger.ErrValidation, len(PurchaseColumns), len(row))
	}
	cell := func(i int) string { return strings.TrimSpace(row[i]) }

	date, err := parseDate(cell(0))
	if err != nil {
		return in, err
	}
	supplierID, err := strconv.ParseInt(cell(1), 10, 64)
	if err != nil {
		return in, fmt.Errorf("%w: supplier_id %q", ledger.ErrValidation, cell(1))
	}
	materialID, err := strconv.ParseInt(cell(2), 10, 64)
	if err != nil {
		return in, fmt.Errorf("%w: material_id %q", ledger.ErrValidation, cell(2))
	}
	qty, err := parseDecimal(cell(4))
	if err != nil {
		return in, fmt.Errorf("%w: quantity %q", ledger.ErrValidation, cell(4))
	}
	price, err := parseDecimal(cell(5))
	if err != nil {
		return in, fmt.Errorf("%w: unit_price %q", ledger.ErrValidation, cell(5))
	}

	return ledger.PurchaseInput{
		Date:          date,
		SupplierID:    supplierID,
		MaterialID:    materialID,
		InvoiceNumber: cell(3),
		Quantity:      qty,
		UnitPrice:     price,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ledger.ErrValidation, s)
}

// parseDecimal accepts both "0.14" and "0,14".
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// PurchaseTemplateXLSX is an empty import file with the expected header.
func PurchaseTemplateXLSX() ([]byte, error) {
	header := make([]any, len(PurchaseColumns))
	for i, c := range PurchaseColumns {
		header[i] = c
	}
	return writeSheet(header, nil)
}
