package fixtures

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/internal/repository/memory"
	"github.com/ticketron/ticketron/internal/service"
)

const sample = `
statuses:
  - name: New
  - name: Closed
clients:
  - key: acme
    company_name: Acme
    last_name: Coyote
    client_since: 2021-05-01
tickets:
  - key: fax
    title: Dead fax
    severity: h
    status: closed
    client: acme
tasks:
  - ticket: fax
    work_summary: Replace toner
    scheduled_day: 03/15/2024
    employee: wile
`

func newServices(t *testing.T) (*service.Services, *repository.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewServices(service.Options{
		Store:      store,
		Clock:      service.Clock{Now: func() time.Time { return time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC) }},
		BcryptCost: bcrypt.MinCost,
	})
	return svc, store
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	svc, store := newServices(t)
	_, err := svc.Users.Create(ctx, service.CreateUserInput{Username: "wile", Password: "super-genius"})
	require.NoError(t, err)

	doc, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	summary, err := Load(ctx, doc, svc)
	require.NoError(t, err)
	assert.Equal(t, Summary{Statuses: 2, Clients: 1, Tickets: 1, Tasks: 1}, summary)

	tickets, err := store.Tickets.List(ctx, repository.TicketFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].ClientID)
	require.NotNil(t, tickets[0].StatusID)
	status, err := store.Statuses.GetByID(ctx, *tickets[0].StatusID)
	require.NoError(t, err)
	assert.Equal(t, "Closed", status.Name)

	client, err := store.Clients.GetByID(ctx, *tickets[0].ClientID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFirstName, client.FirstName)

	tasks, err := store.Tasks.List(ctx, repository.TaskFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2024-03-15", domain.FormatDate(tasks[0].ScheduledDay))
	require.NotNil(t, tasks[0].EmployeeID)
}

func TestLoadSkipsExistingStatuses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newServices(t)
	_, err := svc.Statuses.Create(ctx, "new")
	require.NoError(t, err)

	doc, err := Decode(strings.NewReader("statuses:\n  - name: New\n"))
	require.NoError(t, err)
	summary, err := Load(ctx, doc, svc)
	require.NoError(t, err)
	assert.Zero(t, summary.Statuses)
}

func TestLoadRejectsUnknownReferences(t *testing.T) {
	svc, _ := newServices(t)
	doc, err := Decode(strings.NewReader("tickets:\n  - title: Orphan\n    client: nobody\n"))
	require.NoError(t, err)
	_, err = Load(context.Background(), doc, svc)
	assert.ErrorContains(t, err, "unknown client key")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("widgets:\n  - name: x\n"))
	assert.Error(t, err)
}
