package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/config"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/mail"
	"github.com/ticketron/ticketron/internal/repository/memory"
)

type recordingSender struct {
	sent []mail.Message
}

func (r *recordingSender) Send(msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestNotificationService_MailsEmployeeOnRenewal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sender := &recordingSender{}

	employee := &domain.User{ID: "5d4c7a36-5b0f-4b87-9b0e-c2a8d3a0e8f1", Username: "jdoe", Email: "jdoe@example.com", IsActive: true}
	require.NoError(t, store.Users.Create(ctx, employee))

	notifications := NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Sender:     sender,
		UserRepo:   store.Users,
		ClientRepo: store.Clients,
		TicketRepo: store.Tickets,
	}, zap.NewNop(), config.NotificationConfig{SMTPHost: "smtp.example.com", BaseURL: "http://localhost:8080/"})
	notifications.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventTaskRenewed, "7", nil, events.TaskRenewedPayload{
		TaskID:     7,
		EmployeeID: &employee.ID,
		NewDay:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jdoe@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "2024-05-01")
	assert.Contains(t, sender.sent[0].PlainBody, "http://localhost:8080/mytickets/")
}

func TestNotificationService_SkipsMailWithoutSMTP(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sender := &recordingSender{}

	client := &domain.Client{ID: "0f8fad5b-d9cb-469f-a165-70867728950e"}
	client.ApplyDefaults()
	require.NoError(t, store.Clients.Create(ctx, client))

	notifications := NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Sender:     sender,
		UserRepo:   store.Users,
		ClientRepo: store.Clients,
		TicketRepo: store.Tickets,
	}, zap.NewNop(), config.NotificationConfig{})
	notifications.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventTicketCreated, "t-1", nil, events.TicketPayload{
		Title:    "Printer on fire",
		ClientID: &client.ID,
	})))

	assert.Empty(t, sender.sent)
}
