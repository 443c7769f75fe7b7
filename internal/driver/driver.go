package driver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// Sweeper is the slice of the engine the driver needs.
type Sweeper interface {
	Sweep()
}

// Driver re-evaluates pending orders at a fixed cadence. The cadence lives
// here, outside the engine, which stays timer-free.
type Driver struct {
	engine   Sweeper
	interval time.Duration
	cancel   context.CancelFunc
}

func New(engine Sweeper, interval time.Duration) *Driver {
	return &Driver{
		engine:   engine,
		interval: interval,
	}
}

func (d *Driver) Shutdown() {
	log.Info().Msg("driver shutting down")
	d.cancel()
}

// Run sweeps until the context is cancelled. Blocks.
func (d *Driver) Run(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	t.Go(func() error {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		log.Info().Dur("interval", d.interval).Msg("driver running")
		for {
			select {
			case <-t.Dying():
				return nil
			case <-ticker.C:
				d.engine.Sweep()
			}
		}
	})

	<-ctx.Done()
	return t.Wait()
}
