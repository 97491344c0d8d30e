package app

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	httpx "github.com/yungbote/streamhub-backend/internal/http"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Handle   *store.Handle
	Services Services
	Metrics  *observability.Metrics
	Server   *httpx.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Observability.OtelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Observability.Version,
		Endpoint:    cfg.Observability.OtelEndpoint,
		Headers:     cfg.Observability.OtelHeaders,
		Insecure:    cfg.Observability.OtelInsecure,
		SampleRatio: cfg.Observability.OtelSampler,
	})
	if cfg.Observability.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := a.Migrate(); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Handle = wireHandle(a.Clients.DB.DB(), a.Clients.Badger, log)
	a.Services = wireServices(log, cfg, a.Handle, a.Clients, a.Metrics)
	a.Server = httpx.NewServer(log, wireRouter(log, cfg, a.Services, a.Clients, a.Metrics))
	return a, nil
}

func (a *App) Migrate() error {
	a.Log.Info("Running migrations...")
	if err := a.Clients.DB.AutoMigrateAll(); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Start launches background consumers. Safe to call more than once.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Cfg.Sweep.Enabled && a.Clients.Bus != nil {
		if err := a.Services.Sweeper.Start(ctx, a.Clients.Bus); err != nil {
			return fmt.Errorf("start orphan sweeper: %w", err)
		}
		a.Log.Info("Orphan sweeper listening for deletions")
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	return a.Server.Run(ctx, a.Cfg.HTTP.Addr, a.Cfg.HTTP.ShutdownTimeout)
}

// SweepOrphans runs one full pass over every content kind.
func (a *App) SweepOrphans(ctx context.Context, batch int) (services.SweepReport, error) {
	if batch <= 0 {
		batch = a.Cfg.Sweep.Batch
	}
	return a.Services.Sweeper.SweepOrphans(dbctx.Context{Ctx: ctx}, batch)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
