// Package notify delivers ledger notifications off the request path.
//
// Delivery is best effort: a job runs at most once, a full queue drops the job,
// and failures are logged. Nothing here can fail a balance change.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
)

const (
	defaultQueueSize  = 256
	defaultWorkers    = 4
	defaultJobTimeout = 10 * time.Second
)

var (
	// ErrQueueFull is returned by Enqueue when the job was dropped.
	ErrQueueFull = errors.New("notification queue is full")

	// ErrDispatcherClosed is returned by Enqueue after Shutdown.
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

type job struct {
	name   string
	ctx    context.Context
	run    func(ctx context.Context) error
	queued time.Time
}

// Dispatcher is a bounded queue drained by a fixed set of workers. It implements
// the Notifier, Emailer and InAppNotifier ports by queueing calls to a sender.
type Dispatcher struct {
	sender     portssvc.NotificationSink
	jobs       chan job
	jobTimeout time.Duration
	workers    int

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithJobTimeout bounds each delivery attempt
func WithJobTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.jobTimeout = d
		}
	}
}

// NewDispatcher starts workers that deliver through sender.
func NewDispatcher(sender portssvc.NotificationSink, queueSize, workers int, options ...Option) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	d := &Dispatcher{
		sender:     sender,
		jobs:       make(chan job, queueSize),
		jobTimeout: defaultJobTimeout,
		workers:    workers,
	}
	for _, option := range options {
		option(d)
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

var _ portssvc.NotificationSink = (*Dispatcher)(nil)

func (d *Dispatcher) NotifyBalanceChange(ctx context.Context, change domain.BalanceChange) error {
	return d.Enqueue(ctx, "balance_change", func(ctx context.Context) error {
		return d.sender.NotifyBalanceChange(ctx, change)
	})
}

func (d *Dispatcher) SendLowBalanceEmail(ctx context.Context, alert domain.LowBalanceAlert) error {
	return d.Enqueue(ctx, "low_balance_email", func(ctx context.Context) error {
		return d.sender.SendLowBalanceEmail(ctx, alert)
	})
}

func (d *Dispatcher) CreateLowBalanceNotification(ctx context.Context, alert domain.LowBalanceAlert) error {
	return d.Enqueue(ctx, "low_balance_in_app", func(ctx context.Context) error {
		return d.sender.CreateLowBalanceNotification(ctx, alert)
	})
}

// Enqueue hands run to a worker without blocking. The job keeps the caller's
// logger but not its cancellation, since the request usually ends first.
func (d *Dispatcher) Enqueue(ctx context.Context, name string, run func(ctx context.Context) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("job", name))
	j := job{
		name:   name,
		ctx:    middleware.WithLogger(context.WithoutCancel(ctx), logger),
		run:    run,
		queued: time.Now(),
	}

	select {
	case d.jobs <- j:
		return nil
	default:
		d.dropped.Add(1)
		logger.Warn("Notification queue full, dropping job", slog.Int64("dropped_total", d.dropped.Load()))
		return ErrQueueFull
	}
}

// Dropped reports how many jobs were dropped because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Shutdown stops accepting jobs and waits for queued ones to finish, or for ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.process(j)
	}
}

func (d *Dispatcher) process(j job) {
	logger := middleware.GetLoggerFromCtx(j.ctx)
	ctx, cancel := context.WithTimeout(j.ctx, d.jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Notification job panicked", slog.Any("panic", r))
		}
	}()

	if err := j.run(ctx); err != nil {
		logger.Error("Notification delivery failed",
			slog.String("error", err.Error()),
			slog.Duration("queued_for", time.Since(j.queued)))
		return
	}
	logger.Debug("Notification delivered")
}
