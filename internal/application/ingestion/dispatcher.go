package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/caixo/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DispatcherConfig holds dispatcher tuning
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	TaskTimeout time.Duration
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:     4,
		QueueSize:   256,
		MaxAttempts: 3,
		RetryDelay:  time.Minute,
		TaskTimeout: 2 * time.Minute,
	}
}

type task struct {
	msg     InboundMessage
	attempt int
}

// Dispatcher runs pipeline tasks on a bounded in-process queue. Each task
// gets a fresh context so no tenant binding survives from one message to
// the next; transient failures are retried with a fixed delay up to the
// attempt limit, terminal ones are dropped after a single run.
type Dispatcher struct {
	pipeline *Pipeline
	config   DispatcherConfig
	logger   *zap.Logger

	queue  chan task
	cancel context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(pipeline *Pipeline, config DispatcherConfig, log *zap.Logger) *Dispatcher {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	return &Dispatcher{
		pipeline: pipeline,
		config:   config,
		logger:   log,
		queue:    make(chan task, config.QueueSize),
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.ctx = ctx
	d.cancel = cancel

	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}

	d.logger.Info("ingestion dispatcher started",
		zap.Int("workers", d.config.Workers),
		zap.Int("queue_size", d.config.QueueSize),
	)
	return nil
}

// Stop gracefully stops the workers, waiting for in-flight tasks
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("ingestion dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue hands a message to the pipeline. It never blocks: when the
// queue is full the message is rejected and the gateway's retry (or the
// user resending) covers it.
func (d *Dispatcher) Enqueue(msg InboundMessage) bool {
	return d.enqueue(task{msg: msg, attempt: 1})
}

func (d *Dispatcher) enqueue(t task) bool {
	select {
	case d.queue <- t:
		return true
	default:
		d.logger.Warn("ingestion queue full, message rejected",
			zap.String("message_id", t.msg.MessageID))
		return false
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.queue:
			d.run(t)
		}
	}
}

// run executes one task on a fresh context detached from the worker loop
func (d *Dispatcher) run(t task) {
	taskCtx := logger.WithContext(context.Background(), d.logger)
	if d.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, d.config.TaskTimeout)
		defer cancel()
	}

	err := d.pipeline.Process(taskCtx, t.msg)
	if err == nil {
		return
	}

	log := d.logger.With(
		zap.String("message_id", t.msg.MessageID),
		zap.Int("attempt", t.attempt),
		zap.Error(err),
	)

	if t.attempt >= d.config.MaxAttempts {
		log.Error("message processing failed, attempts exhausted")
		return
	}

	log.Warn("message processing failed, scheduling retry",
		zap.Duration("delay", d.config.RetryDelay))
	d.scheduleRetry(task{msg: t.msg, attempt: t.attempt + 1})
}

func (d *Dispatcher) scheduleRetry(t task) {
	timer := time.AfterFunc(d.config.RetryDelay, func() {
		if d.ctx != nil && d.ctx.Err() != nil {
			return
		}
		d.enqueue(t)
	})

	// Drop pending retries on shutdown instead of leaking timers
	if d.ctx != nil {
		go func() {
			<-d.ctx.Done()
			timer.Stop()
		}()
	}
}
