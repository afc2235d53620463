package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketron/ticketron/internal/persistence"
	"github.com/ticketron/ticketron/internal/service"
)

const reloadMessage = "reload"

// PermissionSync keeps the in-process enforcer in step with the grants table.
// It reloads on a ticker and whenever a message arrives on the Redis channel.
type PermissionSync struct {
	reloader service.PolicyReloader
	redis    *persistence.Redis
	channel  string
	interval time.Duration
	logger   *zap.Logger
}

// NewPermissionSync builds the worker. A nil redis disables the channel and
// a zero interval disables the ticker.
func NewPermissionSync(reloader service.PolicyReloader, redis *persistence.Redis, channel string, interval time.Duration, logger *zap.Logger) *PermissionSync {
	return &PermissionSync{
		reloader: reloader,
		redis:    redis,
		channel:  channel,
		interval: interval,
		logger:   logger,
	}
}

// NotifyPermissionsChanged asks every running instance to reload.
func (p *PermissionSync) NotifyPermissionsChanged(ctx context.Context) error {
	if p.redis == nil {
		return nil
	}
	return p.redis.Publish(ctx, p.channel, reloadMessage)
}

// Run blocks until ctx is cancelled.
func (p *PermissionSync) Run(ctx context.Context) {
	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var messages <-chan *redis.Message
	if p.redis != nil {
		sub := p.redis.Subscribe(ctx, p.channel)
		defer sub.Close()
		messages = sub.Channel()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			p.reload(ctx, "interval")
		case _, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			p.reload(ctx, "notification")
		}
	}
}

func (p *PermissionSync) reload(ctx context.Context, trigger string) {
	if err := p.reloader.Reload(ctx); err != nil {
		p.logger.Warn("permission reload failed", zap.String("trigger", trigger), zap.Error(err))
		return
	}
	p.logger.Debug("permissions reloaded", zap.String("trigger", trigger))
}
