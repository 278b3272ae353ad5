// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jk278/lifetracker/internal/config"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/internal/service"
	"github.com/jk278/lifetracker/internal/store"
)

// App owns the wired application: the local database, the repository bundle
// and the sync services. Construct with NewApp, drive with Run.
type App struct {
	cfg      *config.ClientConfig
	db       *store.DB
	services *service.Services
	logger   *logger.Logger
}

// NewApp opens the local database, applies pending migrations and wires the
// sync services on top.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	storages := store.NewStorages(db, log)
	services := service.NewServices(storages, cfg, log)

	return &App{
		cfg:      cfg,
		db:       db,
		services: services,
		logger:   log,
	}, nil
}

// Services exposes the wired sync surface: configuration, manual rounds,
// conflict resolution and the event stream.
func (a *App) Services() *service.Services {
	return a.services
}

// Run implements Client. It runs one initial round when sync is enabled,
// keeps the background job ticking when auto-sync is on, and blocks until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	go a.consumeEvents(ctx)

	cfg, err := a.services.ConfigService.Config(ctx)
	if err != nil {
		return fmt.Errorf("load sync config: %w", err)
	}

	if cfg.Enabled {
		if msg, err := a.services.SyncManager.Start(ctx); err != nil {
			if !errors.Is(err, service.ErrSyncDisabled) {
				a.logger.Err(err).Str("func", "App.Run").Msg("initial sync round failed")
			}
		} else {
			a.logger.Info().Str("func", "App.Run").Str("result", msg).Msg("initial sync round finished")
		}

		if cfg.AutoSync {
			a.services.SyncJob.Start(ctx, cfg.Interval())
			defer a.services.SyncJob.Stop()
		}
	}

	<-ctx.Done()
	a.logger.Info().Str("func", "App.Run").Msg("shutting down")
	return nil
}

// consumeEvents drains the notification stream into the log so that the
// buffered channel always has a consumer.
func (a *App) consumeEvents(ctx context.Context) {
	events := a.services.SyncManager.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			a.logger.Debug().
				Str("func", "App.consumeEvents").
				Str("kind", string(e.Kind)).
				Str("state", string(e.State)).
				Str("reason", e.Reason).
				Msg("sync event")
		}
	}
}
