package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/metrics"
)

// Processor handles one event. It returns true when the event was a duplicate.
type Processor interface {
	Execute(ctx context.Context, event *domain.VerdictEvent) (bool, error)
}

// WorkerPool manages a fixed-size pool of goroutines that process verdict events.
type WorkerPool struct {
	size      int
	events    <-chan *domain.EventMessage
	processor Processor
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, events <-chan *domain.EventMessage, processor Processor, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:      size,
		events:    events,
		processor: processor,
		logger:    logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current event and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case msg, ok := <-p.events:
			if !ok {
				p.logger.Debug("Event channel closed", zap.Int("worker_id", id))
				return
			}
			p.handle(ctx, id, msg)
		}
	}
}

// handle processes one message. A panic in the processor NACKs the message
// instead of killing the worker.
func (p *WorkerPool) handle(ctx context.Context, id int, msg *domain.EventMessage) {
	event := msg.Event

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.Any("panic", r),
			)
			metrics.WorkerEvents.WithLabelValues("panic").Inc()
			_ = msg.Nack(false)
		}
	}()

	isDuplicate, err := p.processor.Execute(ctx, event)
	if err != nil {
		p.logger.Error("Verdict event failed",
			zap.Int("worker_id", id),
			zap.String("submission_id", event.SubmissionID.String()),
			zap.Error(err),
		)
		// Nack without requeue: failed events go to the DLQ.
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Error("Failed to NACK message",
				zap.String("submission_id", event.SubmissionID.String()),
				zap.Error(nackErr),
			)
		}
		metrics.WorkerEvents.WithLabelValues("error").Inc()
		return
	}

	result := "processed"
	if isDuplicate {
		result = "duplicate"
	}
	if ackErr := msg.Ack(); ackErr != nil {
		p.logger.Error("Failed to ACK message",
			zap.String("submission_id", event.SubmissionID.String()),
			zap.Error(ackErr),
		)
	}
	metrics.WorkerEvents.WithLabelValues(result).Inc()
}
