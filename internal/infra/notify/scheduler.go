package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/Spok95/block-plant/internal/infra/logger"
	"github.com/Spok95/block-plant/internal/infra/report"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/robfig/cron/v3"
)

// Source is the read side of the ledger the jobs report on.
type Source interface {
	LowStockMaterials(ctx context.Context) ([]materials.RawMaterial, error)
	YardStock(ctx context.Context) ([]yard.Stock, error)
	Reconcile(ctx context.Context) ([]ledger.Mismatch, error)
}

type Scheduler struct {
	cron *cron.Cron
	src  Source
	n    Notifier
	log  *slog.Logger
	now  func() time.Time

	lowStockSpec string
	reportSpec   string
}

func NewScheduler(src Source, n Notifier, lowStockSpec, reportSpec string, loc *time.Location, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		src:          src,
		n:            n,
		log:          logger.Component(log, "scheduler"),
		now:          time.Now,
		lowStockSpec: lowStockSpec,
		reportSpec:   reportSpec,
	}
}

// Start registers the jobs with an empty spec skipped.
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"low_stock", s.lowStockSpec, s.runLowStock},
		{"yard_report", s.reportSpec, s.runYardReport},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			return fmt.Errorf("schedule %s %q: %w", j.name, j.spec, err)
		}
		s.log.Info("job scheduled", "job", j.name, "spec", j.spec)
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.LowStockAlert(ctx); err != nil {
		s.log.Error("low stock alert failed", "err", err)
	}
}

func (s *Scheduler) runYardReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.YardReport(ctx); err != nil {
		s.log.Error("yard report failed", "err", err)
	}
}

// LowStockAlert sends the list of materials at or below their threshold. Nothing is sent when none are.
func (s *Scheduler) LowStockAlert(ctx context.Context) error {
	ms, err := s.src.LowStockMaterials(ctx)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		return nil
	}
	return s.n.SendText(FormatLowStock(ms))
}

// YardReport sends the yard stock as xlsx. The caption warns when the movement log disagrees.
func (s *Scheduler) YardReport(ctx context.Context) error {
	stock, err := s.src.YardStock(ctx)
	if err != nil {
		return err
	}
	data, err := report.YardStockXLSX(stock)
	if err != nil {
		return err
	}

	var total int64
	for _, st := range stock {
		total += st.CurrentQuantity
	}
	caption := fmt.Sprintf("Yard stock: %d units in %d block types.", total, len(stock))

	mismatches, err := s.src.Reconcile(ctx)
	if err != nil {
		return err
	}
	if len(mismatches) > 0 {
		caption += fmt.Sprintf("\nWARNING: %d block types differ from the movement log.", len(mismatches))
	}

	name := fmt.Sprintf("yard_%s.xlsx", s.now().Format("20060102_150405"))
	return s.n.SendDocument(name, data, caption)
}

func FormatLowStock(ms []materials.RawMaterial) string {
	var b strings.Builder
	b.WriteString("Low raw material stock:\n")
	for _, m := range ms {
		fmt.Fprintf(&b, "• %s: %s %s (alert at %s)\n",
			m.Name, m.CurrentStock.StringFixed(2), m.Unit, m.MinStockAlert.StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}
