package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	mu sync.Mutex
	n  int
}

func (c *countingSweeper) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	drv := New(sweeper, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- drv.Run(ctx) }()

	require.Eventually(t, func() bool { return sweeper.count() >= 3 },
		time.Second, 5*time.Millisecond, "driver should keep sweeping")

	cancel()
	require.NoError(t, <-done)

	// No sweeps after shutdown has settled.
	settled := sweeper.count()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, settled, sweeper.count())
}
