package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/api/http/handlers"
	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/config"
	"github.com/ticketron/ticketron/internal/markdown"
	"github.com/ticketron/ticketron/internal/observability"
	"github.com/ticketron/ticketron/internal/persistence"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/internal/service"
	"github.com/ticketron/ticketron/internal/web"
)

// AppDependencies holds everything the HTTP layer is built from.
// Metrics, Postgres and Redis may be nil.
type AppDependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *repository.Store
	Services *service.Services
	Checker  auth.PermissionChecker
	Metrics  *observability.Metrics
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
}

// NewApp builds the fiber application with views, middlewares and routes.
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		Views:                 web.NewEngine(markdown.NewRenderer()),
		DisableStartupMessage: true,
	})

	if deps.Metrics != nil {
		deps.Metrics.Register(app)
	}
	RegisterMiddlewares(app, logger, deps.Metrics, cfg.App.RequestTimeout())

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authMiddleware := auth.NewAuthMiddleware(tokens, deps.Store.Users, deps.Checker, auth.AuthOptions{
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		LoginPath:    cfg.Auth.LoginPath,
	}, logger)

	svc := deps.Services
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Postgres, deps.Redis),
		Catalog:  handlers.NewCatalogHandler(svc.Catalog, newSessionStore(cfg.Session, deps.Redis), logger),
		Tickets:  handlers.NewTicketsHandler(svc.Tickets, svc.Clients, svc.Statuses),
		Clients:  handlers.NewClientsHandler(svc.Clients),
		Tasks:    handlers.NewTasksHandler(svc.Tasks),
		Accounts: handlers.NewAccountsHandler(svc.Users, authMiddleware, logger),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Catalog:  svc.Catalog,
			Statuses: svc.Statuses,
			Clients:  svc.Clients,
			Tickets:  svc.Tickets,
			Tasks:    svc.Tasks,
			Users:    svc.Users,
		}),
		AuthMiddleware: authMiddleware,
	})

	return app
}

// newSessionStore keeps sessions in Redis when configured, in memory otherwise.
func newSessionStore(cfg config.SessionConfig, redis *persistence.Redis) *session.Store {
	sessionCfg := session.Config{
		Expiration:     cfg.Expiration(),
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	}
	if redis != nil {
		sessionCfg.Storage = persistence.NewSessionStorage(redis, cfg.KeyPrefix)
	}
	return session.New(sessionCfg)
}
