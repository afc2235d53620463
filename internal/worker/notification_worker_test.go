package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/mail"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *recordingSender) Send(msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestMailQueue_DeliversInBackground(t *testing.T) {
	sender := &recordingSender{}
	queue := NewMailQueue(sender, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		queue.Run(ctx)
		close(done)
	}()

	require.NoError(t, queue.Send(mail.Message{To: "a@example.com", Subject: "one"}))
	require.NoError(t, queue.Send(mail.Message{To: "b@example.com", Subject: "two"}))

	assert.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestMailQueue_RejectsWhenFull(t *testing.T) {
	queue := NewMailQueue(&recordingSender{}, 1, zap.NewNop())

	require.NoError(t, queue.Send(mail.Message{To: "a@example.com"}))
	assert.ErrorIs(t, queue.Send(mail.Message{To: "b@example.com"}), ErrMailQueueFull)
}

func TestMailQueue_FlushesBufferedOnShutdown(t *testing.T) {
	sender := &recordingSender{}
	queue := NewMailQueue(sender, 3, zap.NewNop())
	for _, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, queue.Send(mail.Message{To: to}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	queue.Run(ctx)

	assert.Equal(t, 3, sender.count())
}
