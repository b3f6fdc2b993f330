package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Spok95/block-plant/internal/config"
	"github.com/Spok95/block-plant/internal/infra/db"
	httpx "github.com/Spok95/block-plant/internal/infra/http"
	"github.com/Spok95/block-plant/internal/infra/logger"
	"github.com/Spok95/block-plant/internal/infra/memstore"
	"github.com/Spok95/block-plant/internal/infra/metrics"
	"github.com/Spok95/block-plant/internal/infra/notify"
	"github.com/Spok95/block-plant/internal/ledger"
)

func main() {
	path := flag.String("config", os.Getenv("APP_CONFIG"), "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)

	if err := run(cfg, log); err != nil {
		log.Error("plant stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []ledger.Option{
		ledger.WithLogger(logger.Component(log, "ledger")),
		ledger.WithLocation(loc),
		ledger.WithDashboard(cfg.Dashboard.WindowDays, cfg.Dashboard.RecentMovements),
	}
	if m != nil {
		opts = append(opts, ledger.WithRecorder(m))
	}
	eng := ledger.New(store, opts...)

	var n notify.Notifier = notify.NewLog(logger.Component(log, "notify"))
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
		if err != nil {
			return err
		}
		n = tg
	}
	sched := notify.NewScheduler(eng, n, cfg.Alerts.LowStockCron, cfg.Alerts.ReportCron, loc, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	api := httpx.NewAPI(eng, m, loc, logger.Component(log, "http"))
	srv := httpx.New(cfg.HTTP.Addr, api.Handler())
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()
	log.Info("http server started", "addr", cfg.HTTP.Addr, "storage", cfg.Storage.Driver)

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("graceful shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (ledger.Store, func(), error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("db connected, migrations applied")
	return db.NewStore(pool), pool.Close, nil
}
