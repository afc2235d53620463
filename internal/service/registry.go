package service

import (
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/config"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/mail"
	"github.com/ticketron/ticketron/internal/repository"
)

// Services is the full set of application services sharing one store.
type Services struct {
	Statuses      *StatusService
	Clients       *ClientService
	Tickets       *TicketService
	Tasks         *TaskService
	Users         *UserService
	Catalog       *CatalogService
	Permissions   *PermissionService
	Notifications *NotificationService
}

// Options configures NewServices. Sender, Reloader and Notifier may be nil.
type Options struct {
	Store        *repository.Store
	Dispatcher   events.Dispatcher
	Observer     RenewalObserver
	Clock        Clock
	BcryptCost   int
	Reloader     PolicyReloader
	Notifier     ChangeNotifier
	Sender       mail.Sender
	Notification config.NotificationConfig
	Logger       *zap.Logger
}

// NewServices builds every service over opts.Store.
func NewServices(opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store

	statuses := NewStatusService(store.Statuses)
	clients := NewClientService(store.Clients, store.Tickets, opts.Dispatcher)
	tickets := NewTicketService(TicketDependencies{
		TicketRepo: store.Tickets,
		TaskRepo:   store.Tasks,
		StatusRepo: store.Statuses,
		ClientRepo: store.Clients,
		UserRepo:   store.Users,
		Dispatcher: opts.Dispatcher,
		Clock:      opts.Clock,
	})
	tasks := NewTaskService(TaskDependencies{
		TaskRepo:   store.Tasks,
		TicketRepo: store.Tickets,
		UserRepo:   store.Users,
		Dispatcher: opts.Dispatcher,
		Observer:   opts.Observer,
		Clock:      opts.Clock,
	})
	users := NewUserService(store.Users, opts.BcryptCost)

	return &Services{
		Statuses:    statuses,
		Clients:     clients,
		Tickets:     tickets,
		Tasks:       tasks,
		Users:       users,
		Catalog:     NewCatalogService(tickets, tasks, clients, statuses, users),
		Permissions: NewPermissionService(store.Grants, store.Users, opts.Reloader, opts.Notifier, logger),
		Notifications: NewNotificationService(NotificationDependencies{
			Dispatcher: opts.Dispatcher,
			Sender:     opts.Sender,
			UserRepo:   store.Users,
			ClientRepo: store.Clients,
			TicketRepo: store.Tickets,
		}, logger, opts.Notification),
	}
}
