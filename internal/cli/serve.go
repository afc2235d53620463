package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/ticketron/ticketron/internal/api/http"
	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/mail"
	"github.com/ticketron/ticketron/internal/observability"
	"github.com/ticketron/ticketron/internal/persistence"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/internal/worker"
)

const mailQueueSize = 100

func newServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the web application, the permission reload loop and the notification handlers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations on startup")
	return cmd
}

func runServe(parent context.Context, skipMigrations bool) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.close()
	cfg, logger := env.cfg, env.logger

	shutdownTracing := observability.SetupTracing(ctx, cfg.App.Name, cfg.Telemetry, logger)
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	if cfg.Postgres.RunMigrations && !skipMigrations {
		if err := persistence.RunMigrations(ctx, env.postgres.PoolHandle(), logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	enforcer, err := auth.NewEnforcer(env.store.Grants, logger)
	if err != nil {
		return err
	}
	if err := enforcer.Reload(ctx); err != nil {
		logger.Error("failed to load permissions", zap.Error(err))
		return err
	}
	permissionSync := worker.NewPermissionSync(enforcer, env.redis, cfg.Permissions.Channel, cfg.Permissions.ReloadInterval(), logger)
	go permissionSync.Run(ctx)

	var sender mail.Sender
	if cfg.Notification.Enabled() {
		queue := worker.NewMailQueue(mail.NewSMTPSender(cfg.Notification), mailQueueSize, logger)
		go queue.Run(ctx)
		sender = queue
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics(cfg.App.Name)
	services := service.NewServices(service.Options{
		Store:        env.store,
		Dispatcher:   events.NewInMemoryDispatcher(logger),
		Observer:     metrics,
		Clock:        service.Clock{Location: loc},
		BcryptCost:   cfg.Auth.BcryptCost,
		Reloader:     enforcer,
		Notifier:     permissionSync,
		Sender:       sender,
		Notification: cfg.Notification,
		Logger:       logger,
	})
	services.Notifications.RegisterHandlers()

	app := httptransport.NewApp(httptransport.AppDependencies{
		Config:   cfg,
		Logger:   logger,
		Store:    env.store,
		Services: services,
		Checker:  enforcer,
		Metrics:  metrics,
		Postgres: env.postgres,
		Redis:    env.redis,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
			return err
		}
	}

	cancel()
	return app.ShutdownWithTimeout(10 * time.Second)
}
