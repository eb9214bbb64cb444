package dispatcher

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Worker struct {
	dispatcher *Dispatcher
	workerID   int
	logger     *zap.Logger
}

func NewWorker(dispatcher *Dispatcher, workerID int) *Worker {
	return &Worker{
		dispatcher: dispatcher,
		workerID:   workerID,
		logger:     dispatcher.logger.With(zap.Int("worker_id", workerID)),
	}
}

func (w *Worker) Start(ctx context.Context) {
	defer w.dispatcher.workerWg.Done()

	w.logger.Debug("Worker started")

	for {
		select {
		case task := <-w.dispatcher.taskQueue:
			w.processTask(task)
		case <-w.dispatcher.shutdownCh:
			w.logger.Debug("Shutdown signal received, worker stopping")
			return
		case <-ctx.Done():
			w.logger.Debug("Context cancelled, worker stopping")
			return
		}
	}
}

// processTask runs the fetch under the submitter's context so cancellation
// and request-scoped values follow the task onto the worker.
func (w *Worker) processTask(task *Task) {
	tracer := w.dispatcher.tele.GetTracer()
	ctx, span := tracer.Start(task.Context, "dispatcher.processTask")
	defer span.End()

	span.SetAttributes(
		attribute.String("task_id", task.ID),
		attribute.String("city", task.Query.City),
		attribute.String("date", task.Query.Date),
		attribute.Int("worker_id", w.workerID),
	)

	w.logger.Debug("Processing task",
		zap.String("task_id", task.ID),
		zap.Duration("queued_for", time.Since(task.CreatedAt)))

	outcome := w.dispatcher.fetcher.Fetch(ctx, task.Query)

	span.SetAttributes(attribute.Bool("success", outcome.IsSuccess()))
	task.resolve(outcome)
}
