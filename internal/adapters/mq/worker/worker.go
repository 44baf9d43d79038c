// Package worker scores queued questionnaire responses concurrently.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/mq/queue"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/metrics"
)

const statusOK = "ok"

// Predictor runs the prediction pipeline for one response.
type Predictor interface {
	Predict(ctx context.Context, raw questionnaire.RawInput) (app.Result, error)
}

// Queue defines how workers receive jobs. Len is called after each
// receive so the queue gauge follows the drain.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
	Len(ctx context.Context) int
}

// Outcome is the result of one job. Exactly one of Result or Err is set.
type Outcome struct {
	Line   int
	Result app.Result
	Err    error
}

// InMemoryWorker pulls jobs off the queue and reports outcomes.
type InMemoryWorker struct {
	queue     Queue
	predictor Predictor
	out       chan<- Outcome
	name      string

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, predictor Predictor, out chan<- Outcome, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		predictor: predictor,
		out:       out,
		name:      "worker",
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run processes jobs until the queue is drained or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.queue.Len(ctx)
			outcome := w.process(ctx, job)
			select {
			case w.out <- outcome:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) Outcome {
	res, err := w.predictor.Predict(ctx, job.Input)
	if err != nil {
		metrics.RecordBatchJob(app.Kind(err))
		w.logger.Debug(ctx, "response failed",
			logger.Int("line", job.Line),
			logger.Error(err),
		)
		return Outcome{Line: job.Line, Err: err}
	}
	metrics.RecordBatchJob(statusOK)
	return Outcome{Line: job.Line, Result: res}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	wg      sync.WaitGroup
}

// NewPool creates a worker pool. A non-positive count uses runtime.NumCPU().
func NewPool(workerCount int, q Queue, predictor Predictor, out chan<- Outcome, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{workers: make([]*InMemoryWorker, workerCount)}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, predictor, out, workerOpts...)
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has stopped.
func (p *Pool) Wait() {
	p.wg.Wait()
}
