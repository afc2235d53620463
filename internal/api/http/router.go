package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketron/ticketron/internal/api/http/handlers"
	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/domain"
	apperrors "github.com/ticketron/ticketron/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Catalog        *handlers.CatalogHandler
	Tickets        *handlers.TicketsHandler
	Clients        *handlers.ClientsHandler
	Tasks          *handlers.TasksHandler
	Accounts       *handlers.AccountsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Literal segments are registered before
// the parameterised routes they would otherwise be shadowed by.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/", cfg.Catalog.Index)

	app.Get("/accounts/login/", cfg.Accounts.LoginForm)
	app.Post("/accounts/login/", cfg.Accounts.Login)
	app.Get("/accounts/logout/", cfg.Accounts.Logout)
	app.Post("/accounts/logout/", cfg.Accounts.Logout)

	canMark := cfg.AuthMiddleware.RequirePermission(domain.PermCanMarkReturned)

	app.Get("/tickets/", cfg.Tickets.List)
	app.Get("/ticket/create/", canMark, cfg.Tickets.CreateForm)
	app.Post("/ticket/create/", canMark, cfg.Tickets.Create)
	app.Get("/ticket/:taskid/renew/", canMark, cfg.Tasks.RenewForm)
	app.Post("/ticket/:taskid/renew/", canMark, cfg.Tasks.Renew)
	app.Get("/ticket/:id/update/", canMark, cfg.Tickets.UpdateForm)
	app.Post("/ticket/:id/update/", canMark, cfg.Tickets.Update)
	app.Get("/ticket/:id/delete/", canMark, cfg.Tickets.DeleteConfirm)
	app.Post("/ticket/:id/delete/", canMark, cfg.Tickets.Delete)
	app.Get("/ticket/:id", cfg.Tickets.Detail)

	app.Get("/authors/", cfg.Clients.List)
	app.Get("/client/create/", canMark, cfg.Clients.CreateForm)
	app.Post("/client/create/", canMark, cfg.Clients.Create)
	app.Get("/client/:id/update/", canMark, cfg.Clients.UpdateForm)
	app.Post("/client/:id/update/", canMark, cfg.Clients.Update)
	app.Get("/client/:id/delete/", canMark, cfg.Clients.DeleteConfirm)
	app.Post("/client/:id/delete/", canMark, cfg.Clients.Delete)
	app.Get("/client/:id", cfg.Clients.Detail)

	app.Get("/mytickets/", cfg.AuthMiddleware.RequireLogin(), cfg.Tasks.Mine)
	app.Get("/borrowed/", canMark, cfg.Tasks.Borrowed)

	registerAdminRoutes(app.Group("/admin", cfg.AuthMiddleware.RequireStaff()), cfg.Admin)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("page", map[string]any{"path": c.Path()})
	})
}

func registerAdminRoutes(admin fiber.Router, h *handlers.AdminHandler) {
	admin.Get("/", h.Index)

	admin.Get("/statuses/", h.ListStatuses)
	admin.Get("/statuses/add/", h.AddStatusForm)
	admin.Post("/statuses/add/", h.AddStatus)
	admin.Get("/statuses/:id/delete/", h.DeleteStatusConfirm)
	admin.Post("/statuses/:id/delete/", h.DeleteStatus)
	admin.Get("/statuses/:id/", h.ChangeStatusForm)
	admin.Post("/statuses/:id/", h.ChangeStatus)

	admin.Get("/clients/", h.ListClients)
	admin.Get("/clients/add/", h.AddClientForm)
	admin.Post("/clients/add/", h.AddClient)
	admin.Get("/clients/:id/delete/", h.DeleteClientConfirm)
	admin.Post("/clients/:id/delete/", h.DeleteClient)
	admin.Get("/clients/:id/", h.ChangeClientForm)
	admin.Post("/clients/:id/", h.ChangeClient)

	admin.Get("/tickets/", h.ListTickets)
	admin.Get("/tickets/add/", h.AddTicketForm)
	admin.Post("/tickets/add/", h.AddTicket)
	admin.Post("/tickets/:id/tasks/", h.AddTicketTask)
	admin.Get("/tickets/:id/delete/", h.DeleteTicketConfirm)
	admin.Post("/tickets/:id/delete/", h.DeleteTicket)
	admin.Get("/tickets/:id/", h.ChangeTicketForm)
	admin.Post("/tickets/:id/", h.ChangeTicket)

	admin.Get("/tasks/", h.ListTasks)
	admin.Get("/tasks/add/", h.AddTaskForm)
	admin.Post("/tasks/add/", h.AddTask)
	admin.Get("/tasks/:id/delete/", h.DeleteTaskConfirm)
	admin.Post("/tasks/:id/delete/", h.DeleteTask)
	admin.Get("/tasks/:id/", h.ChangeTaskForm)
	admin.Post("/tasks/:id/", h.ChangeTask)
}
