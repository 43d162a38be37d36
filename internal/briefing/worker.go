package briefing

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Job asks for one logged message to be analyzed.
type Job struct {
	MessageID string
	Text      string
}

// ResultSink receives the outcome of an analysis job.
type ResultSink interface {
	ApplyAnalysis(ctx context.Context, messageID string, a Analysis) error
	MarkAnalysisFailed(ctx context.Context, messageID string, cause error) error
}

// WorkerPool manages a pool of workers analyzing logged messages.
type WorkerPool struct {
	size     int
	jobs     chan Job
	analyzer Analyzer
	sink     ResultSink
	logger   *zap.Logger
}

// NewWorkerPool creates a new worker pool. The queue holds queueSize jobs.
func NewWorkerPool(size, queueSize int, analyzer Analyzer, sink ResultSink, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize < size {
		queueSize = size
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:     size,
		jobs:     make(chan Job, queueSize),
		analyzer: analyzer,
		sink:     sink,
		logger:   logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.logger.With(zap.Int("worker", id))
	log.Debug("Worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.process(ctx, log, job)
		case <-ctx.Done():
			log.Debug("Worker shutting down")
			return
		}
	}
}

// Dispatch queues job without blocking. It reports false when the queue is
// full; the message then stays pending.
func (wp *WorkerPool) Dispatch(job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.logger.Warn("Analysis queue full, message left pending", zap.String("message_id", job.MessageID))
		return false
	}
}

func (wp *WorkerPool) process(ctx context.Context, log *zap.Logger, job Job) {
	log = log.With(zap.String("message_id", job.MessageID))

	analysis, err := wp.analyzer.Analyze(ctx, job.Text)
	switch {
	case errors.Is(err, ErrDisabled):
		log.Info("Analyzer disabled, message left pending")
		return
	case err != nil:
		log.Warn("Message analysis failed", zap.Error(err))
		if err := wp.sink.MarkAnalysisFailed(ctx, job.MessageID, err); err != nil {
			log.Error("Failed to record analysis failure", zap.Error(err))
		}
		return
	}

	if err := wp.sink.ApplyAnalysis(ctx, job.MessageID, analysis); err != nil {
		log.Error("Failed to store analysis", zap.Error(err))
		return
	}
	log.Debug("Message analyzed", zap.Int("todos", len(analysis.Todos)), zap.Int("notices", len(analysis.Notices)))
}
