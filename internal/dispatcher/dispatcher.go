package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/service"
	"github.com/vzahanych/weather-history-app/pkg/telemetry"
)

var (
	ErrNotStarted = errors.New("dispatcher not started")
	ErrStopped    = errors.New("dispatcher stopped")
)

// Fetcher is the work a dispatcher runs for every task.
type Fetcher interface {
	Fetch(ctx context.Context, q service.Query) service.Outcome
}

// Task is one queued fetch. ResultCh is buffered and receives exactly one
// outcome before it is closed.
type Task struct {
	ID        string
	Query     service.Query
	Context   context.Context
	ResultCh  chan service.Outcome
	CreatedAt time.Time
}

// resolve delivers the outcome. Every task is resolved exactly once, either
// by a worker or by Stop.
func (t *Task) resolve(o service.Outcome) {
	t.ResultCh <- o
	close(t.ResultCh)
}

type Options struct {
	Workers   int
	QueueSize int
}

// Dispatcher runs fetches on a fixed pool of background workers and hands
// each outcome back to the submitter over the task's channel.
type Dispatcher struct {
	fetcher    Fetcher
	workers    int
	taskQueue  chan *Task
	shutdownCh chan struct{}
	workerWg   sync.WaitGroup
	stopOnce   sync.Once
	mu         sync.RWMutex
	started    bool
	stopped    bool
	logger     *zap.Logger
	tele       *telemetry.Telemetry
}

func New(fetcher Fetcher, opts Options, logger *zap.Logger, tele *telemetry.Telemetry) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		fetcher:    fetcher,
		workers:    opts.Workers,
		taskQueue:  make(chan *Task, opts.QueueSize),
		shutdownCh: make(chan struct{}),
		logger:     logger.With(zap.String("component", "dispatcher")),
		tele:       tele,
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}
	if d.started {
		return nil
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.workerWg.Add(1)
		go NewWorker(d, i).Start(ctx)
	}

	go d.stopOnCancel(ctx)

	d.logger.Info("Dispatcher started", zap.Int("workers", d.workers))
	return nil
}

// stopOnCancel stops the dispatcher when the context given to Start ends, so
// submissions are refused and queued tasks still receive an outcome.
func (d *Dispatcher) stopOnCancel(ctx context.Context) {
	select {
	case <-ctx.Done():
		d.logger.Info("Start context done, stopping dispatcher", zap.Error(ctx.Err()))
		if err := d.Stop(context.Background()); err != nil {
			d.logger.Warn("Dispatcher stop after cancellation failed", zap.Error(err))
		}
	case <-d.shutdownCh:
	}
}

// Ready reports whether the dispatcher accepts submissions.
func (d *Dispatcher) Ready() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch {
	case d.stopped:
		return ErrStopped
	case !d.started:
		return ErrNotStarted
	}
	return nil
}

// Submit queues a fetch and returns the channel its outcome arrives on.
// It blocks while the queue is full, until ctx is done or the dispatcher
// stops.
func (d *Dispatcher) Submit(ctx context.Context, q service.Query) (<-chan service.Outcome, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return nil, ErrStopped
	}
	if !d.started {
		return nil, ErrNotStarted
	}

	task := &Task{
		ID:        uuid.New().String(),
		Query:     q,
		Context:   ctx,
		ResultCh:  make(chan service.Outcome, 1),
		CreatedAt: time.Now(),
	}

	select {
	case d.taskQueue <- task:
		d.logger.Debug("Task queued", zap.String("task_id", task.ID), zap.Stringer("query", q))
		return task.ResultCh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.shutdownCh:
		return nil, ErrStopped
	}
}

// Stop signals workers to exit, waits for them, and resolves any task still
// queued with a network error so no submitter waits forever.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() {
		// Closing first unblocks submitters waiting on a full queue so the
		// write lock below can be taken.
		close(d.shutdownCh)

		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.workerWg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	drained := 0
	for {
		select {
		case task := <-d.taskQueue:
			task.resolve(service.Failed(&service.FetchError{
				Kind:    service.KindNetwork,
				Message: ErrStopped.Error(),
				Err:     ErrStopped,
			}))
			drained++
		default:
			d.logger.Info("Dispatcher stopped", zap.Int("drained_tasks", drained))
			return err
		}
	}
}
