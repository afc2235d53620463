package service

import (
	"context"
)

// CatalogStats are the counts shown on the home page.
type CatalogStats struct {
	Tickets   int
	Tasks     int
	OpenTasks int
	Clients   int
	Statuses  int
	Users     int
}

// CatalogService aggregates counts across the catalog.
type CatalogService struct {
	tickets  *TicketService
	tasks    *TaskService
	clients  *ClientService
	statuses *StatusService
	users    *UserService
}

func NewCatalogService(tickets *TicketService, tasks *TaskService, clients *ClientService, statuses *StatusService, users *UserService) *CatalogService {
	return &CatalogService{tickets: tickets, tasks: tasks, clients: clients, statuses: statuses, users: users}
}

// Stats collects every count in one pass.
func (s *CatalogService) Stats(ctx context.Context) (CatalogStats, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Stats")
	defer span.End()

	var stats CatalogStats
	var err error
	if stats.Tickets, err = s.tickets.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Tasks, err = s.tasks.Count(ctx); err != nil {
		return stats, err
	}
	if stats.OpenTasks, err = s.tasks.CountOpen(ctx); err != nil {
		return stats, err
	}
	if stats.Clients, err = s.clients.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Statuses, err = s.statuses.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Users, err = s.users.Count(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}
