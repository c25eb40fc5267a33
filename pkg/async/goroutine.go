package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// log is the package logger. Hosts may replace it before starting traffic.
var log = logrus.New()

// SetLogger replaces the package logger used for panic and error reports.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

// SafeGo executes a function in a goroutine with context cancellation,
// panic recovery and timeout enforcement. Event handlers use it to hand off
// slow work instead of blocking dispatch.
//
//	async.SafeGo(ctx, 5*time.Second, "welcome email", func(ctx context.Context) error {
//		return mailer.SendWelcome(ctx, email)
//	})
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"task":  taskName,
					"panic": r,
				}).Errorf("panic in background task:\n%s", debug.Stack())
			}
		}()

		if err := fn(ctx); err != nil {
			log.WithError(err).Warnf("background task %q failed", taskName)
		}
	}()
}

// SafeGoNoError is like SafeGo for functions that don't return errors.
func SafeGoNoError(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context)) {
	SafeGo(parentCtx, timeout, taskName, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}

// WorkerPool runs submitted tasks on a fixed set of workers with per-task
// timeouts, panic recovery and graceful shutdown.
type WorkerPool struct {
	workers      int
	taskName     string
	timeout      time.Duration
	workCh       chan func(context.Context) error
	doneCh       chan struct{}
	errCh        chan error
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewWorkerPool creates and starts a worker pool.
func NewWorkerPool(ctx context.Context, workers int, taskName string, timeout time.Duration) *WorkerPool {
	ctx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  workers,
		taskName: taskName,
		timeout:  timeout,
		workCh:   make(chan func(context.Context) error, workers*2),
		doneCh:   make(chan struct{}),
		errCh:    make(chan error, workers*10),
		ctx:      ctx,
		cancel:   cancel,
	}

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				pool.worker(id)
			}(i)
		}
		wg.Wait()
		close(pool.doneCh)
	}()

	return pool
}

// Submit adds a task to the pool. Returns an error if the pool is shut
// down.
func (p *WorkerPool) Submit(fn func(context.Context) error) error {
	select {
	case <-p.doneCh:
		return fmt.Errorf("worker pool shut down")
	default:
	}

	// Shutdown may close workCh between the check above and the send below.
	defer func() {
		_ = recover()
	}()

	select {
	case p.workCh <- fn:
		return nil
	case <-p.doneCh:
		return fmt.Errorf("worker pool shut down")
	}
}

// Shutdown drains remaining tasks and waits up to timeout for workers to
// finish.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		func() {
			defer func() {
				_ = recover() // channel may already be closed by Batch
			}()
			close(p.workCh)
		}()

		select {
		case <-p.doneCh:
			p.cancel()
		case <-time.After(timeout):
			p.cancel()
			shutdownErr = fmt.Errorf("worker pool shutdown timed out after %v", timeout)
		}
	})

	return shutdownErr
}

// Errors returns the channel worker errors are reported on.
func (p *WorkerPool) Errors() <-chan error {
	return p.errCh
}

func (p *WorkerPool) worker(id int) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"task":   p.taskName,
				"worker": id,
				"panic":  r,
			}).Errorf("panic in worker:\n%s", debug.Stack())
		}
	}()

	for {
		select {
		case <-p.ctx.Done():
			return

		case fn, ok := <-p.workCh:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
			func() {
				defer cancel()
				defer func() {
					if r := recover(); r != nil {
						p.report(fmt.Errorf("panic: %v", r))
					}
				}()

				if err := fn(ctx); err != nil {
					p.report(err)
				}
			}()
		}
	}
}

func (p *WorkerPool) report(err error) {
	select {
	case p.errCh <- err:
	default:
		log.WithError(err).Warnf("worker pool %q error channel full, dropping error", p.taskName)
	}
}

// Batch processes a slice of items concurrently using a worker pool and
// returns all errors encountered. The expiry sweeper uses it to emit one
// event per expired subscription.
func Batch[T any](ctx context.Context, items []T, workers int, taskName string, timeout time.Duration,
	fn func(context.Context, T) error) []error {

	pool := NewWorkerPool(ctx, workers, taskName, timeout)
	defer pool.Shutdown(5 * time.Second)

	for _, item := range items {
		item := item
		if err := pool.Submit(func(ctx context.Context) error {
			return fn(ctx, item)
		}); err != nil {
			return []error{err}
		}
	}

	// Close the work channel so workers drain all remaining tasks, then
	// wait for them before collecting errors.
	close(pool.workCh)
	<-pool.doneCh
	pool.cancel()

	var errs []error
	for {
		select {
		case err := <-pool.errCh:
			errs = append(errs, err)
		default:
			return errs
		}
	}
}
