package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/mail"
)

// ErrMailQueueFull is returned by Send when the buffer has no free slot.
var ErrMailQueueFull = errors.New("mail queue full")

// MailQueue decouples request handling from SMTP round trips. Send enqueues
// and Run delivers through the wrapped sender on its own goroutine.
type MailQueue struct {
	sender mail.Sender
	jobs   chan mail.Message
	logger *zap.Logger
}

// NewMailQueue wraps sender with a buffer of size messages.
func NewMailQueue(sender mail.Sender, size int, logger *zap.Logger) *MailQueue {
	if size <= 0 {
		size = 1
	}
	return &MailQueue{
		sender: sender,
		jobs:   make(chan mail.Message, size),
		logger: logger,
	}
}

// Send enqueues msg without blocking.
func (q *MailQueue) Send(msg mail.Message) error {
	select {
	case q.jobs <- msg:
		return nil
	default:
		q.logger.Warn("mail dropped", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return ErrMailQueueFull
	}
}

// Run delivers queued mail until ctx is cancelled, then flushes what is
// already buffered.
func (q *MailQueue) Run(ctx context.Context) {
	for {
		select {
		case msg := <-q.jobs:
			q.deliver(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-q.jobs:
					q.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (q *MailQueue) deliver(msg mail.Message) {
	if err := q.sender.Send(msg); err != nil {
		q.logger.Error("mail delivery failed", zap.String("to", msg.To), zap.Error(err))
		return
	}
	q.logger.Debug("mail delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
}
