package ledger_test

import (
	"strings"
	"testing"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustYardStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.eng.AdjustYardStock(f.ctx, ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: 1000, Reason: "opening count"})
	require.NoError(t, err)

	mv, err := f.eng.AdjustYardStock(f.ctx, ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: -50, Reason: "Merma rotura en patio"})
	require.NoError(t, err)
	assert.Equal(t, int64(950), f.yardOf(t, f.block.ID))
	assert.Equal(t, yard.MoveAdjustment, mv.Type)
	assert.Equal(t, int64(-50), mv.Quantity)
	assert.True(t, strings.HasPrefix(mv.Reference, "ADJ-"))
	assert.True(t, strings.HasSuffix(mv.Reference, "-Merma rotu"), mv.Reference)

	for i := 0; i < 5; i++ {
		_, err := f.eng.AdjustYardStock(f.ctx, ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: -50, Reason: "breakage"})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(700), f.yardOf(t, f.block.ID))

	mismatches, err := f.eng.Reconcile(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestAdjustYardStock_Rejections(t *testing.T) {
	f := newFixture(t)
	f.produce(t, 100)

	noYard := catalog.BlockType{Name: "Paver", Active: true}
	require.NoError(t, f.store.Catalog().CreateBlockType(f.ctx, &noYard))

	tests := []struct {
		name string
		in   ledger.AdjustmentInput
		want error
	}{
		{"zero delta", ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: 0, Reason: "x"}, ledger.ErrValidation},
		{"blank reason", ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: 5, Reason: " "}, ledger.ErrValidation},
		{"unknown block type", ledger.AdjustmentInput{BlockTypeID: 999, Delta: 5, Reason: "x"}, ledger.ErrNotFound},
		{"below zero", ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: -101, Reason: "x"}, ledger.ErrNegativeStock},
		{"negative without yard row", ledger.AdjustmentInput{BlockTypeID: noYard.ID, Delta: -1, Reason: "x"}, ledger.ErrNegativeStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.eng.AdjustYardStock(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(100), f.yardOf(t, f.block.ID))

	// down to exactly zero is allowed
	_, err := f.eng.AdjustYardStock(f.ctx, ledger.AdjustmentInput{BlockTypeID: f.block.ID, Delta: -100, Reason: "recount"})
	require.NoError(t, err)
	assert.Zero(t, f.yardOf(t, f.block.ID))

	// a positive delta creates the missing row
	_, err = f.eng.AdjustYardStock(f.ctx, ledger.AdjustmentInput{BlockTypeID: noYard.ID, Delta: 20, Reason: "found"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), f.yardOf(t, noYard.ID))
}

func TestReconcile_ReportsDrift(t *testing.T) {
	f := newFixture(t)
	f.produce(t, 100)

	_, err := f.store.Yard().Credit(f.ctx, f.block.ID, 7)
	require.NoError(t, err)

	mismatches, err := f.eng.Reconcile(f.ctx)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, ledger.Mismatch{BlockTypeID: f.block.ID, BlockTypeName: "Block 20", Stock: 107, Movements: 100}, mismatches[0])
}
