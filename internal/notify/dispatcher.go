package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// taskTimeout bounds a single side effect so a wedged broker cannot pile up
// pool workers indefinitely.
const taskTimeout = 10 * time.Second

// Dispatcher runs fire-and-forget side effects on a bounded worker pool.
// Enqueue returns immediately; task errors are logged and swallowed.
type Dispatcher struct {
	pool   *ants.Pool
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher backed by a worker pool of the given size
func NewDispatcher(size int, logger *slog.Logger) (*Dispatcher, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		pool:   pool,
		logger: logger,
	}, nil
}

// Enqueue submits a named task to the pool. The task gets its own context
// detached from the caller's request, so a finished HTTP request does not
// cancel an in-flight notification. Submission failure degrades to a log line:
// notifications are never allowed to fail the operation that produced them.
func (d *Dispatcher) Enqueue(name string, task func(ctx context.Context) error) {
	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()

		if err := task(ctx); err != nil {
			d.logger.Warn("Side effect failed", "task", name, "error", err)
		}
	})
	if err != nil {
		d.wg.Done()
		d.logger.Warn("Failed to submit side effect to worker pool", "task", name, "error", err)
	}
}

// Shutdown waits for in-flight tasks (up to the given grace period) and
// releases the pool.
func (d *Dispatcher) Shutdown(grace time.Duration) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		d.logger.Warn("Dispatcher shutdown grace period elapsed with tasks still running", "running", d.pool.Running())
	}

	d.pool.Release()
}

// Running returns the number of busy workers
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}
