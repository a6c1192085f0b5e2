package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"pagethread/internal/retention"
	"pagethread/pkg/config"
	"pagethread/pkg/logger"
	"pagethread/pkg/store"
	"pagethread/pkg/validation"
)

// App encapsulates the storage service components and lifecycle.
type App struct {
	cfg       *config.Config
	addr      string
	dbPath    string
	source    string
	version   string
	commit    string
	buildDate string

	cancelRetention context.CancelFunc
}

// New initializes resources that do not require a running context
// (logger, runtime keys, validation limits, DB). Call Run to start the
// HTTP listeners and block until shutdown.
func New(cfg *config.Config, addr, dbPath, source, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	logger.Init(cfg.Logging.Level)

	if dbPath == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if len(cfg.Security.APIKeys.Backend)+len(cfg.Security.APIKeys.Frontend)+len(cfg.Security.APIKeys.Admin) == 0 {
		logger.Warn("no_api_keys_configured", "hint", "all requests will be rejected; set security.api_keys")
	}

	config.SetRuntime(cfg.Runtime())
	validation.SetLimits(validation.Limits{
		MaxBodyBytes:   cfg.Limits.MaxBodyBytes,
		MaxAttachments: cfg.Limits.MaxAttachments,
	})

	if err := store.Open(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dbPath, err)
	}

	return &App{
		cfg:       cfg,
		addr:      addr,
		dbPath:    dbPath,
		source:    source,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
	}, nil
}

// Run starts the retention runner and the HTTP listeners, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	cancel, err := retention.Start(ctx, a.cfg.Retention)
	if err != nil {
		return err
	}
	a.cancelRetention = cancel

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases resources in reverse start order.
func (a *App) Close() error {
	if a.cancelRetention != nil {
		a.cancelRetention()
	}
	return store.Close()
}
