package ledger_test

import (
	"math"
	"testing"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workerUnits(id, units int64) production.WorkerOutput {
	return production.WorkerOutput{WorkerID: id, Units: units}
}

func TestCreateProductionBatch(t *testing.T) {
	f := newFixture(t)

	b, err := f.eng.CreateProductionBatch(f.ctx, ledger.ProductionInput{
		Date:        day,
		Shift:       production.ShiftMorning,
		BlockTypeID: f.block.ID,
		CreatedByID: 7,
		Workers:     []production.WorkerOutput{workerUnits(f.ana.ID, 500), workerUnits(f.luis.ID, 300)},
	})
	require.NoError(t, err)

	assert.Equal(t, "LOTE-20241001-0001", b.Code)
	assert.Equal(t, int64(800), b.TotalUnits)
	assert.True(t, b.TotalCost.Equal(d("232")), "cost %s", b.TotalCost)
	assert.True(t, b.UnitCost.Equal(d("0.29")), "unit cost %s", b.UnitCost)
	require.Len(t, b.Materials, 3)
	assert.True(t, b.Materials[0].Quantity.Equal(d("1200")))
	assert.True(t, b.Materials[0].UnitPrice.Equal(d("0.14")))

	assert.True(t, f.stockOf(t, f.cement.ID).Equal(d("7300")))
	assert.True(t, f.stockOf(t, f.sand.ID).Equal(d("27600")))
	assert.True(t, f.stockOf(t, f.additive.ID).Equal(d("42")))
	assert.Equal(t, int64(800), f.yardOf(t, f.block.ID))

	mv, err := f.eng.ListMovements(f.ctx, f.block.ID, 10)
	require.NoError(t, err)
	require.Len(t, mv, 1)
	assert.Equal(t, yard.MoveInProduction, mv[0].Type)
	assert.Equal(t, int64(800), mv[0].Quantity)
	assert.Equal(t, b.Code, mv[0].Reference)
	assert.Equal(t, "Block 20", mv[0].BlockTypeName)

	b2, err := f.eng.CreateProductionBatch(f.ctx, ledger.ProductionInput{
		Date: day, Shift: production.ShiftNight, BlockTypeID: f.block.ID,
		Workers: []production.WorkerOutput{workerUnits(f.ana.ID, 10)},
	})
	require.NoError(t, err)
	assert.Equal(t, "LOTE-20241001-0002", b2.Code)

	batches, err := f.eng.ListBatches(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[1].Workers, 2)
}

func TestCreateProductionBatch_InsufficientSandDebitsNothing(t *testing.T) {
	f := newFixture(t)
	ok, err := f.store.Materials().Debit(f.ctx, f.sand.ID, d("28000"))
	require.NoError(t, err)
	require.True(t, ok)

	// 800 units need 1200 cement and 8 additive (both fine) but 2400 sand against 2000
	_, err = f.eng.CreateProductionBatch(f.ctx, ledger.ProductionInput{
		Date: day, Shift: production.ShiftMorning, BlockTypeID: f.block.ID,
		Workers: []production.WorkerOutput{workerUnits(f.ana.ID, 800)},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Sand needs 2400, has 2000")

	assert.True(t, f.stockOf(t, f.cement.ID).Equal(d("8500")))
	assert.True(t, f.stockOf(t, f.sand.ID).Equal(d("2000")))
	assert.True(t, f.stockOf(t, f.additive.ID).Equal(d("50")))
	assert.Zero(t, f.yardOf(t, f.block.ID))
	mv, err := f.eng.ListMovements(f.ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, mv)
	batches, err := f.eng.ListBatches(f.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestCreateProductionBatch_CementShortfall(t *testing.T) {
	f := newFixture(t)
	ok, err := f.store.Materials().Debit(f.ctx, f.cement.ID, d("7400"))
	require.NoError(t, err)
	require.True(t, ok)

	// 800 units need 1200 kg cement, only 1100 left
	_, err = f.eng.CreateProductionBatch(f.ctx, ledger.ProductionInput{
		Date: day, Shift: production.ShiftMorning, BlockTypeID: f.block.ID,
		Workers: []production.WorkerOutput{workerUnits(f.ana.ID, 800)},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	assert.True(t, f.stockOf(t, f.cement.ID).Equal(d("1100")))
	assert.Zero(t, f.yardOf(t, f.block.ID))
}

func TestCreateProductionBatch_Rejections(t *testing.T) {
	f := newFixture(t)

	inactive, err := f.eng.CreateWorker(f.ctx, ledger.WorkerInput{DNI: "X1", FirstName: "Old"})
	require.NoError(t, err)
	_, err = f.eng.SetWorkerActive(f.ctx, inactive.ID, false)
	require.NoError(t, err)

	noRecipe := catalog.BlockType{Name: "Paver", Active: true}
	require.NoError(t, f.store.Catalog().CreateBlockType(f.ctx, &noRecipe))

	retired, err := f.eng.CreateBlockType(f.ctx, ledger.BlockTypeInput{
		Name:  "Block 15",
		Items: []catalog.FormulationItem{{MaterialID: f.cement.ID, KgPerUnit: d("1")}},
	})
	require.NoError(t, err)
	_, err = f.eng.SetBlockTypeActive(f.ctx, retired.BlockType.ID, false)
	require.NoError(t, err)

	base := func() ledger.ProductionInput {
		return ledger.ProductionInput{
			Date: day, Shift: production.ShiftMorning, BlockTypeID: f.block.ID,
			Workers: []production.WorkerOutput{workerUnits(f.ana.ID, 100)},
		}
	}
	tests := []struct {
		name   string
		mutate func(*ledger.ProductionInput)
		want   error
	}{
		{"no workers", func(in *ledger.ProductionInput) { in.Workers = nil }, ledger.ErrInvalidQuantity},
		{"zero units", func(in *ledger.ProductionInput) { in.Workers[0].Units = 0 }, ledger.ErrInvalidQuantity},
		{"negative units", func(in *ledger.ProductionInput) { in.Workers[0].Units = -5 }, ledger.ErrInvalidQuantity},
		{"total overflows int64", func(in *ledger.ProductionInput) {
			in.Workers = []production.WorkerOutput{
				workerUnits(f.ana.ID, math.MaxInt64),
				workerUnits(f.luis.ID, math.MaxInt64),
				workerUnits(inactive.ID, 3),
			}
		}, ledger.ErrInvalidQuantity},
		{"duplicate worker", func(in *ledger.ProductionInput) {
			in.Workers = append(in.Workers, workerUnits(f.ana.ID, 1))
		}, ledger.ErrValidation},
		{"unknown shift", func(in *ledger.ProductionInput) { in.Shift = "EVENING" }, ledger.ErrValidation},
		{"unknown block type", func(in *ledger.ProductionInput) { in.BlockTypeID = 999 }, ledger.ErrNotFound},
		{"inactive block type", func(in *ledger.ProductionInput) { in.BlockTypeID = retired.BlockType.ID }, ledger.ErrValidation},
		{"no formulation", func(in *ledger.ProductionInput) { in.BlockTypeID = noRecipe.ID }, ledger.ErrMissingFormulation},
		{"unknown worker", func(in *ledger.ProductionInput) { in.Workers[0].WorkerID = 999 }, ledger.ErrNotFound},
		{"inactive worker", func(in *ledger.ProductionInput) { in.Workers[0].WorkerID = inactive.ID }, ledger.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := f.eng.CreateProductionBatch(f.ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, ledger.ErrInvalidQuantity, ledger.ErrValidation)
	assert.True(t, f.stockOf(t, f.cement.ID).Equal(d("8500")), "failed batches must not debit")
	assert.Zero(t, f.yardOf(t, f.block.ID))
}

func TestUpdateFormulation_NewBatchesUseLatestVersion(t *testing.T) {
	f := newFixture(t)
	f.produce(t, 100)

	nf, err := f.eng.UpdateFormulation(f.ctx, f.block.ID, []catalog.FormulationItem{
		{MaterialID: f.cement.ID, KgPerUnit: d("2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, nf.Version)

	active, err := f.eng.ActiveFormulation(f.ctx, f.block.ID)
	require.NoError(t, err)
	assert.Equal(t, nf.ID, active.ID)

	before := f.stockOf(t, f.cement.ID)
	sandBefore := f.stockOf(t, f.sand.ID)
	f.produce(t, 100)
	assert.True(t, before.Sub(f.stockOf(t, f.cement.ID)).Equal(d("200")))
	assert.True(t, f.stockOf(t, f.sand.ID).Equal(sandBefore))

	batches, err := f.eng.ListBatches(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[1].Materials, 3, "older batch keeps its own breakdown")
}

func TestCreateBlockType_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.eng.CreateBlockType(f.ctx, ledger.BlockTypeInput{
		Name: "block 20", Items: []catalog.FormulationItem{{MaterialID: f.cement.ID, KgPerUnit: d("1")}},
	})
	assert.ErrorIs(t, err, ledger.ErrConflict)

	_, err = f.eng.CreateBlockType(f.ctx, ledger.BlockTypeInput{Name: "Empty"})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = f.eng.CreateBlockType(f.ctx, ledger.BlockTypeInput{
		Name: "Twice", Items: []catalog.FormulationItem{
			{MaterialID: f.cement.ID, KgPerUnit: d("1")},
			{MaterialID: f.cement.ID, KgPerUnit: d("2")},
		},
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = f.eng.CreateBlockType(f.ctx, ledger.BlockTypeInput{
		Name: "Ghost", Items: []catalog.FormulationItem{{MaterialID: 999, KgPerUnit: d("1")}},
	})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	types, err := f.eng.ListBlockTypes(f.ctx, false)
	require.NoError(t, err)
	assert.Len(t, types, 1, "rejected block types leave nothing behind")
}
