package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/internal/repository/memory"
	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

type fixture struct {
	store    *repository.Store
	clients  *ClientService
	tickets  *TicketService
	tasks    *TaskService
	statuses *StatusService
	renewals map[string]int
	today    time.Time
}

type countingObserver map[string]int

func (c countingObserver) ObserveRenewal(outcome string) { c[outcome]++ }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	clock := Clock{Now: func() time.Time { return now }}
	observer := countingObserver{}

	return &fixture{
		store:    store,
		clients:  NewClientService(store.Clients, store.Tickets, dispatcher),
		statuses: NewStatusService(store.Statuses),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: store.Tickets,
			TaskRepo:   store.Tasks,
			StatusRepo: store.Statuses,
			ClientRepo: store.Clients,
			UserRepo:   store.Users,
			Dispatcher: dispatcher,
			Clock:      clock,
		}),
		tasks: NewTaskService(TaskDependencies{
			TaskRepo:   store.Tasks,
			TicketRepo: store.Tickets,
			UserRepo:   store.Users,
			Dispatcher: dispatcher,
			Observer:   observer,
			Clock:      clock,
		}),
		renewals: observer,
		today:    domain.DateOf(now),
	}
}

func TestTicketService_CreateUsesNewStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.statuses.Create(ctx, "Closed")
	require.NoError(t, err)
	open, err := f.statuses.Create(ctx, "New")
	require.NoError(t, err)

	ticket, err := f.tickets.Create(ctx, nil, TicketInput{Title: "Broken VPN"})
	require.NoError(t, err)
	require.NotNil(t, ticket.StatusID)
	assert.Equal(t, open.ID, *ticket.StatusID)
	assert.Equal(t, domain.SeverityMedium, ticket.Severity)
}

func TestTicketService_RejectsUnknownSeverity(t *testing.T) {
	f := newFixture(t)

	_, err := f.tickets.Create(context.Background(), nil, TicketInput{Title: "x", Severity: "z"})
	require.Error(t, err)
	assert.Equal(t, "Select a valid choice.", errorutil.FieldErrors(err)["severity"])
}

func TestClientService_DeleteKeepsTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	client, err := f.clients.Create(ctx, nil, ClientInput{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	ticket, err := f.tickets.Create(ctx, nil, TicketInput{Title: "Engine", ClientID: &client.ID})
	require.NoError(t, err)

	require.NoError(t, f.clients.Delete(ctx, nil, client.ID))

	reloaded, err := f.tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ClientID)
}

func TestClientService_CreateAppliesPlaceholders(t *testing.T) {
	f := newFixture(t)

	client, err := f.clients.Create(context.Background(), nil, ClientInput{LastName: "Hopper"})
	require.NoError(t, err)
	assert.Equal(t, "Jon", client.FirstName)
	assert.Equal(t, "Bogus Inc", client.CompanyName)
	assert.Equal(t, "Hopper, Jon", client.String())
}

func TestClientService_GetMalformedID(t *testing.T) {
	f := newFixture(t)

	_, err := f.clients.Get(context.Background(), "not-a-uuid")
	assert.True(t, errorutil.IsNotFound(err))
}

func TestTicketService_DeleteKeepsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ticket, err := f.tickets.Create(ctx, nil, TicketInput{Title: "Engine"})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, TaskInput{TicketID: &ticket.ID, WorkSummary: "inspect"})
	require.NoError(t, err)

	require.NoError(t, f.tickets.Delete(ctx, nil, ticket.ID))

	item, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, item.Task.TicketID)
	assert.Nil(t, item.Ticket)
}

func TestTaskService_Renew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original := f.today.AddDate(0, 0, -2)
	task, err := f.tasks.Create(ctx, TaskInput{WorkSummary: "patch", ScheduledDay: &original})
	require.NoError(t, err)

	renewed, err := f.tasks.Renew(ctx, nil, task.ID, f.today.AddDate(0, 0, 14).Format(domain.DateLayout))
	require.NoError(t, err)
	assert.True(t, renewed.ScheduledDay.Equal(f.today.AddDate(0, 0, 14)))

	stored, err := f.store.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.ScheduledDay.Equal(f.today.AddDate(0, 0, 14)))
	assert.Equal(t, 1, f.renewals[RenewalSucceeded])
}

func TestTaskService_RenewRejectsOutOfWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original := f.today
	task, err := f.tasks.Create(ctx, TaskInput{WorkSummary: "patch", ScheduledDay: &original})
	require.NoError(t, err)

	_, err = f.tasks.Renew(ctx, nil, task.ID, f.today.AddDate(0, 0, -1).Format(domain.DateLayout))
	require.Error(t, err)
	assert.Equal(t, MsgRenewalInPast, errorutil.FieldErrors(err)[RenewalField])

	_, err = f.tasks.Renew(ctx, nil, task.ID, f.today.AddDate(0, 0, 29).Format(domain.DateLayout))
	require.Error(t, err)
	assert.Equal(t, MsgRenewalTooFar, errorutil.FieldErrors(err)[RenewalField])

	stored, err := f.store.Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.ScheduledDay.Equal(original))
	assert.Equal(t, 2, f.renewals[RenewalRejected])
}

func TestTaskService_RenewUnknownTask(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Renew(context.Background(), nil, 999, "2024-03-11")
	assert.True(t, errorutil.IsNotFound(err))
}

func TestTaskService_BorrowedOrdersOpenTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	late := f.today.AddDate(0, 0, 5)
	early := f.today.AddDate(0, 0, -1)
	_, err := f.tasks.Create(ctx, TaskInput{WorkSummary: "unscheduled"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, TaskInput{WorkSummary: "late", ScheduledDay: &late})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, TaskInput{WorkSummary: "early", ScheduledDay: &early})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, TaskInput{WorkSummary: "finished", ScheduledDay: &early, Done: true})
	require.NoError(t, err)

	page, err := f.tasks.Borrowed(ctx, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "early", page.Items[0].Task.WorkSummary)
	assert.True(t, page.Items[0].Overdue)
	assert.Equal(t, "late", page.Items[1].Task.WorkSummary)
	assert.Equal(t, "unscheduled", page.Items[2].Task.WorkSummary)
}

func TestTaskService_ListScheduledFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lastYear := f.today.AddDate(-1, 0, 0)
	threeDaysAgo := f.today.AddDate(0, 0, -3)
	_, err := f.tasks.Create(ctx, TaskInput{WorkSummary: "old", ScheduledDay: &lastYear})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, TaskInput{WorkSummary: "recent", ScheduledDay: &threeDaysAgo})
	require.NoError(t, err)

	items, err := f.tasks.List(ctx, TaskFilter{Scheduled: ScheduledPast7})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "recent", items[0].Task.WorkSummary)

	items, err = f.tasks.List(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestClientService_ListPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 13; i++ {
		_, err := f.clients.Create(ctx, nil, ClientInput{FirstName: "F", LastName: string(rune('A' + i))})
		require.NoError(t, err)
	}

	first, err := f.clients.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, "A", first.Items[0].LastName)

	second, err := f.clients.List(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, second.Items, 3)
	assert.Equal(t, "M", second.Items[2].LastName)
}
