// Package scheduler runs file jobs on a fixed worker pool.
package scheduler

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Job is one file to process. Key selects the worker: jobs with the same
// key run one at a time, in submission order.
type Job struct {
	Key        string
	Path       string
	EnqueuedAt time.Time
}

// JobHandler processes a job
type JobHandler interface {
	Handle(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to JobHandler
type HandlerFunc func(ctx context.Context, job Job) error

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// DispatcherConfig holds dispatcher configuration
type DispatcherConfig struct {
	Workers   int
	QueueSize int // per worker
}

// DefaultDispatcherConfig returns default dispatcher configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:   4,
		QueueSize: 100,
	}
}

// Dispatcher fans jobs out to workers sharded by job key.
type Dispatcher struct {
	config  DispatcherConfig
	handler JobHandler
	logger  *zap.Logger

	// mu guards queues against send-after-close between Submit and Stop.
	mu       sync.RWMutex
	queues   []chan Job
	wg       sync.WaitGroup
	running  atomic.Bool
	inFlight atomic.Int64
	handled  atomic.Int64
	failed   atomic.Int64
}

// NewDispatcher creates a dispatcher; call Start before submitting.
func NewDispatcher(config DispatcherConfig, handler JobHandler, logger *zap.Logger) (*Dispatcher, error) {
	if config.Workers <= 0 || config.QueueSize <= 0 {
		return nil, fmt.Errorf("%w: workers=%d queue_size=%d", ErrInvalidConfig, config.Workers, config.QueueSize)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: handler is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		config:  config,
		handler: handler,
		logger:  logger,
	}, nil
}

// Start launches the workers. Jobs run with a context detached from ctx's
// cancellation so that Stop can drain them.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return nil
	}

	jobCtx := context.WithoutCancel(ctx)
	d.queues = make([]chan Job, d.config.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan Job, d.config.QueueSize)
		d.wg.Add(1)
		go d.worker(jobCtx, i, d.queues[i])
	}
	d.running.Store(true)

	d.logger.Info("Dispatcher started",
		zap.Int("workers", d.config.Workers),
		zap.Int("queue_size", d.config.QueueSize),
	)
	return nil
}

// Stop refuses new jobs and returns once every queued and in-flight job has
// finished. Jobs are never abandoned: when ctx expires first, Stop logs the
// outstanding work and keeps waiting.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return nil
	}
	d.running.Store(false)
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("Dispatcher still draining",
			zap.Int64("in_flight", d.inFlight.Load()),
			zap.Int("pending", d.Pending()),
		)
		<-done
	}

	d.logger.Info("Dispatcher stopped gracefully",
		zap.Int64("handled", d.handled.Load()),
		zap.Int64("failed", d.failed.Load()),
	)
	return nil
}

// Submit queues a job on the worker owning its key without blocking.
func (d *Dispatcher) Submit(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.running.Load() {
		return ErrNotRunning
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	shard := ShardFor(job.Key, len(d.queues))
	select {
	case d.queues[shard] <- job:
		d.logger.Debug("Job submitted",
			zap.String("key", job.Key),
			zap.String("path", job.Path),
			zap.Int("worker_id", shard),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

// IsRunning reports whether the dispatcher accepts jobs
func (d *Dispatcher) IsRunning() bool {
	return d.running.Load()
}

// InFlight returns the number of jobs currently being handled
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// Pending returns the number of queued jobs not yet picked up
func (d *Dispatcher) Pending() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, q := range d.queues {
		n += len(q)
	}
	return n
}

// ShardFor maps a key onto one of n workers.
func ShardFor(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (d *Dispatcher) worker(ctx context.Context, workerID int, jobs <-chan Job) {
	defer d.wg.Done()

	d.logger.Debug("Worker started", zap.Int("worker_id", workerID))
	for job := range jobs {
		d.process(ctx, workerID, job)
	}
	d.logger.Debug("Worker stopped", zap.Int("worker_id", workerID))
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job Job) {
	d.inFlight.Inc()
	defer d.inFlight.Dec()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.failed.Inc()
			d.logger.Error("Job panicked",
				zap.Int("worker_id", workerID),
				zap.String("key", job.Key),
				zap.String("path", job.Path),
				zap.Any("panic", r),
			)
		}
	}()

	if err := d.handler.Handle(ctx, job); err != nil {
		d.failed.Inc()
		d.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("key", job.Key),
			zap.String("path", job.Path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	d.handled.Inc()
	d.logger.Debug("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("key", job.Key),
		zap.Duration("queued", start.Sub(job.EnqueuedAt)),
		zap.Duration("duration", time.Since(start)),
	)
}
