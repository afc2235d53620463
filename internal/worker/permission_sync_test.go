package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestPermissionSync_ReloadsOnInterval(t *testing.T) {
	reloader := &countingReloader{}
	sync := NewPermissionSync(reloader, nil, "ticketron:permissions", 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sync.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reloader.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestPermissionSync_NotifyWithoutRedis(t *testing.T) {
	sync := NewPermissionSync(&countingReloader{}, nil, "ticketron:permissions", 0, zap.NewNop())
	assert.NoError(t, sync.NotifyPermissionsChanged(context.Background()))
}
