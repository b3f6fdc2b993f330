package ledger_test

import (
	"testing"

	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivePurchase_WeightedAverage(t *testing.T) {
	f := newFixture(t)

	res, err := f.eng.ReceivePurchase(f.ctx, ledger.PurchaseInput{
		Date: day, SupplierID: f.supplier.ID, MaterialID: f.cement.ID,
		InvoiceNumber: "F-001", Quantity: d("5000"), UnitPrice: d("0.14"),
	})
	require.NoError(t, err)
	assert.True(t, res.Material.CurrentStock.Equal(d("13500")))
	assert.True(t, res.Material.AverageUnitPrice.Equal(d("0.14")))
	assert.True(t, res.Purchase.TotalPrice.Equal(d("700")))

	res, err = f.eng.ReceivePurchase(f.ctx, ledger.PurchaseInput{
		Date: day, SupplierID: f.supplier.ID, MaterialID: f.cement.ID,
		InvoiceNumber: "F-002", Quantity: d("1000"), UnitPrice: d("0.20"),
	})
	require.NoError(t, err)
	assert.True(t, res.Material.CurrentStock.Equal(d("14500")))
	assert.Equal(t, "0.1441", res.Material.AverageUnitPrice.StringFixed(4))

	stored, err := f.store.Materials().Get(f.ctx, f.cement.ID)
	require.NoError(t, err)
	assert.True(t, stored.AverageUnitPrice.Equal(res.Material.AverageUnitPrice))

	list, err := f.eng.ListPurchases(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "F-002", list[0].InvoiceNumber)
}

func TestReceivePurchase_Rejections(t *testing.T) {
	f := newFixture(t)
	valid := ledger.PurchaseInput{
		Date: day, SupplierID: f.supplier.ID, MaterialID: f.cement.ID,
		InvoiceNumber: "F-010", Quantity: d("10"), UnitPrice: d("1"),
	}

	tests := []struct {
		name   string
		mutate func(*ledger.PurchaseInput)
		want   error
	}{
		{"zero quantity", func(in *ledger.PurchaseInput) { in.Quantity = d("0") }, ledger.ErrInvalidQuantity},
		{"negative price", func(in *ledger.PurchaseInput) { in.UnitPrice = d("-0.5") }, ledger.ErrValidation},
		{"missing invoice", func(in *ledger.PurchaseInput) { in.InvoiceNumber = "  " }, ledger.ErrValidation},
		{"missing supplier", func(in *ledger.PurchaseInput) { in.SupplierID = 999 }, ledger.ErrNotFound},
		{"missing material", func(in *ledger.PurchaseInput) { in.MaterialID = 999 }, ledger.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.eng.ReceivePurchase(f.ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, f.stockOf(t, f.cement.ID).Equal(d("8500")))
	list, err := f.eng.ListPurchases(f.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReceivePurchase_FreeGoodsAllowed(t *testing.T) {
	f := newFixture(t)
	res, err := f.eng.ReceivePurchase(f.ctx, ledger.PurchaseInput{
		Date: day, SupplierID: f.supplier.ID, MaterialID: f.additive.ID,
		InvoiceNumber: "SAMPLE", Quantity: d("50"), UnitPrice: d("0"),
	})
	require.NoError(t, err)
	assert.True(t, res.Material.AverageUnitPrice.Equal(d("1")))
	assert.True(t, res.Purchase.TotalPrice.IsZero())
}
