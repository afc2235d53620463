// Package cli implements the ticketron command tree.
package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/config"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/observability"
	"github.com/ticketron/ticketron/internal/persistence"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/internal/repository/memory"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/internal/worker"
)

// environment holds the resources shared by every command.
type environment struct {
	cfg      *config.Config
	logger   *zap.Logger
	postgres *persistence.Postgres
	redis    *persistence.Redis
	store    *repository.Store
}

func initEnv(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	env := &environment{
		cfg:      cfg,
		logger:   logger,
		postgres: pg,
		redis:    persistence.NewRedis(cfg.Redis, logger),
	}
	if pg.Enabled() {
		env.store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		env.store = memory.NewStore()
	}
	return env, nil
}

// requirePostgres rejects commands whose effect would vanish with the in-memory store.
func (e *environment) requirePostgres() error {
	if !e.postgres.Enabled() {
		return fmt.Errorf("POSTGRES_DSN is not set")
	}
	return nil
}

func (e *environment) close() {
	e.redis.Close()
	e.postgres.Close()
	_ = e.logger.Sync()
}

// services builds the service set used by administrative commands. Grant
// changes are broadcast so running servers reload their policies.
func (e *environment) services() *service.Services {
	loc, _ := e.cfg.App.Location()
	return service.NewServices(service.Options{
		Store:      e.store,
		Dispatcher: events.NewInMemoryDispatcher(e.logger),
		Clock:      service.Clock{Location: loc},
		BcryptCost: e.cfg.Auth.BcryptCost,
		Notifier:   worker.NewPermissionSync(nil, e.redis, e.cfg.Permissions.Channel, 0, e.logger),
		Logger:     e.logger,
	})
}
