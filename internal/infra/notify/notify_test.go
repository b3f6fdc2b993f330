package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/Spok95/block-plant/internal/ledger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct{ sent []tgbotapi.Chattable }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type fakeSource struct {
	low        []materials.RawMaterial
	stock      []yard.Stock
	mismatches []ledger.Mismatch
}

func (f fakeSource) LowStockMaterials(context.Context) ([]materials.RawMaterial, error) {
	return f.low, nil
}
func (f fakeSource) YardStock(context.Context) ([]yard.Stock, error) { return f.stock, nil }
func (f fakeSource) Reconcile(context.Context) ([]ledger.Mismatch, error) {
	return f.mismatches, nil
}

func newTestScheduler(src Source, sender *fakeSender) *Scheduler {
	s := NewScheduler(src, NewTelegramWithSender(sender, 42), "", "", time.UTC,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 10, 1, 7, 0, 0, 0, time.UTC) }
	return s
}

func TestLowStockAlert(t *testing.T) {
	sender := &fakeSender{}
	src := fakeSource{low: []materials.RawMaterial{
		{Name: "Additive", Unit: materials.UnitKg, CurrentStock: decimal.RequireFromString("7"), MinStockAlert: decimal.NewFromInt(10)},
	}}
	require.NoError(t, newTestScheduler(src, sender).LowStockAlert(context.Background()))

	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "Additive: 7.00 KG (alert at 10.00)")
}

func TestLowStockAlert_NothingLow(t *testing.T) {
	sender := &fakeSender{}
	require.NoError(t, newTestScheduler(fakeSource{}, sender).LowStockAlert(context.Background()))
	assert.Empty(t, sender.sent)
}

func TestYardReport(t *testing.T) {
	sender := &fakeSender{}
	src := fakeSource{
		stock:      []yard.Stock{{BlockTypeID: 1, BlockTypeName: "Block 20", CurrentQuantity: 950}},
		mismatches: []ledger.Mismatch{{BlockTypeID: 1}},
	}
	require.NoError(t, newTestScheduler(src, sender).YardReport(context.Background()))

	require.Len(t, sender.sent, 1)
	doc, ok := sender.sent[0].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Contains(t, doc.Caption, "950 units in 1 block types")
	assert.Contains(t, doc.Caption, "WARNING")
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "yard_20241001_070000.xlsx", file.Name)
	assert.NotEmpty(t, file.Bytes)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(fakeSource{}, NewLog(slog.New(slog.NewTextHandler(io.Discard, nil))), "not a cron", "", time.UTC,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, s.Start())
}
