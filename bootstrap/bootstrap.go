// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/adapters/clock"
	"github.com/metersplit/metersplit/adapters/hasher"
	"github.com/metersplit/metersplit/adapters/idgen"
	"github.com/metersplit/metersplit/adapters/memory"
	"github.com/metersplit/metersplit/adapters/metrics"
	"github.com/metersplit/metersplit/adapters/sqlite"
	"github.com/metersplit/metersplit/app"
	"github.com/metersplit/metersplit/config"
	"github.com/metersplit/metersplit/domain/tariff"
	"github.com/metersplit/metersplit/ports"
	"github.com/metersplit/metersplit/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB // nil when the memory driver is active
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Registry   *prometheus.Registry

	// Services
	Meters  *app.MeterService
	Tariffs *app.TariffService
	Billing *app.BillingService

	// Stores
	meterStore    ports.MeterStore
	tariffStore   ports.TariffStore
	billStore     ports.BillStore
	settingsStore ports.SettingsStore

	holder *config.Holder
}

// New creates and initializes the application from the given config path.
// A missing config file falls back to environment variables and defaults.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := SetupLogger(cfg.Logging)
	logger.Info().Msg("initializing metersplit")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	if cfg.Metrics.Enabled {
		a.Metrics, a.Registry = metrics.New()
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	if err := a.initStores(); err != nil {
		return nil, fmt.Errorf("init stores: %w", err)
	}

	ctx := context.Background()
	if err := a.seedTariff(ctx); err != nil {
		return nil, fmt.Errorf("seed tariff: %w", err)
	}
	if err := a.storeAdminKey(ctx, cfg.Admin.APIKey); err != nil {
		return nil, fmt.Errorf("store admin key: %w", err)
	}

	a.initServices()
	a.initHTTPServer()

	if err := a.watchConfig(configPath); err != nil {
		logger.Warn().Err(err).Msg("config hot reload disabled")
	}

	return a, nil
}

func (a *App) initStores() error {
	switch a.Config.Database.Driver {
	case "memory":
		var seed tariff.Config
		if a.Config.Tariff != nil {
			seed = *a.Config.Tariff
		}
		a.meterStore = memory.NewMeterStore()
		a.tariffStore = memory.NewTariffStore(seed)
		a.billStore = memory.NewBillStore()
		a.settingsStore = memory.NewSettingsStore()
		a.Logger.Info().Msg("using in-memory stores")
		return nil
	default:
		db, err := sqlite.Open(a.Config.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.meterStore = sqlite.NewMeterStore(db)
		a.tariffStore = sqlite.NewTariffStore(db)
		a.billStore = sqlite.NewBillStore(db)
		a.settingsStore = sqlite.NewSettingsStore(db)
		a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")
		return nil
	}
}

// seedTariff writes the configured tariff into the store when no version
// has been stored yet. An already-populated store always wins.
func (a *App) seedTariff(ctx context.Context) error {
	if a.Config.Tariff == nil {
		return nil
	}
	_, version, err := a.tariffStore.Get(ctx)
	if err != nil {
		return err
	}
	if version > 0 {
		return nil
	}
	if _, err := a.tariffStore.Put(ctx, *a.Config.Tariff); err != nil {
		return err
	}
	a.Logger.Info().Int("slabs", len(a.Config.Tariff.Slabs)).Msg("tariff seeded from config")
	return nil
}

// storeAdminKey hashes the configured admin API key into settings.
// An empty key clears the stored hash and disables auth.
func (a *App) storeAdminKey(ctx context.Context, key string) error {
	if key == "" {
		return a.settingsStore.Delete(ctx, "admin_api_key_hash")
	}
	h := hasher.NewBcrypt(0)
	hash, err := h.Hash(key)
	if err != nil {
		return err
	}
	return a.settingsStore.Set(ctx, "admin_api_key_hash", string(hash))
}

func (a *App) initServices() {
	a.Meters = app.NewMeterService(a.meterStore, idgen.UUID{}, a.Logger)
	a.Tariffs = app.NewTariffService(a.tariffStore, a.Logger, a.Metrics)
	a.Billing = app.NewBillingService(app.BillingDeps{
		Meters:  a.meterStore,
		Tariffs: a.tariffStore,
		Bills:   a.billStore,
		Clock:   clock.Real{},
		IDs:     idgen.UUID{},
		Logger:  a.Logger,
		Metrics: a.Metrics,
	})
}

func (a *App) initHTTPServer() {
	handler := web.NewHandler(web.Deps{
		Meters:   a.Meters,
		Tariffs:  a.Tariffs,
		Billing:  a.Billing,
		Bills:    a.billStore,
		Settings: a.settingsStore,
		Hasher:   hasher.NewBcrypt(0),
		Logger:   a.Logger,
		Metrics:  a.Metrics,
		Registry: a.Registry,
		Docs:     a.Config.Docs.Enabled,
	})

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// watchConfig wires hot reload for the config file and SIGHUP.
// Reloads re-hash the admin key; server settings need a restart.
func (a *App) watchConfig(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	holder, err := config.NewHolder(path, a.Logger)
	if err != nil {
		return err
	}
	a.holder = holder

	holder.OnChange(func(cfg *config.Config) {
		a.Config = cfg
		if err := a.storeAdminKey(context.Background(), cfg.Admin.APIKey); err != nil {
			a.Logger.Error().Err(err).Msg("failed to update admin key")
		}
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
		a.Logger.Info().Msg("configuration reloaded")
	})

	if err := holder.WatchFile(); err != nil {
		return err
	}
	holder.WatchSignals()
	return nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// SetupLogger builds the application logger from logging config.
func SetupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
