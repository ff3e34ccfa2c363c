package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"leadscout/internal/metrics"
)

// ErrQueueFull is returned by SubmitJob when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by SubmitJob after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Job is a unit of work run by a Worker.
type Job interface {
	Execute(ctx context.Context) error
	ID() string
}

type funcJob struct {
	id string
	fn func(ctx context.Context) error
}

func (j funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }
func (j funcJob) ID() string                        { return j.id }

// NewJob wraps fn as a Job.
func NewJob(id string, fn func(ctx context.Context) error) Job {
	return funcJob{id: id, fn: fn}
}

// Worker pulls jobs from its own channel after registering it in the pool.
type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	quit       chan struct{}
	wg         *sync.WaitGroup
	log        logrus.FieldLogger
}

func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, log logrus.FieldLogger) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		quit:       make(chan struct{}),
		wg:         wg,
		log:        log.WithField("worker", id),
	}
}

// Start runs the worker loop until Stop. A job already handed to the worker
// is finished before it exits.
func (w Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.quit:
				return
			}

			select {
			case job := <-w.JobChannel:
				w.run(ctx, job)
			case <-w.quit:
				return
			}
		}
	}()
}

func (w Worker) run(ctx context.Context, job Job) {
	log := w.log.WithField("job_id", job.ID())
	log.Debug("Started job")
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Job panicked")
		}
	}()
	if err := job.Execute(ctx); err != nil {
		log.WithError(err).Error("Job failed")
		return
	}
	log.Debug("Finished job")
}

func (w Worker) Stop() {
	close(w.quit)
}

// Dispatcher feeds queued jobs to a fixed set of workers.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job
	JobQueue   chan Job
	Workers    []Worker

	wg      sync.WaitGroup
	pending sync.WaitGroup
	quit    chan struct{}
	mu      sync.RWMutex
	stopped bool
	log     logrus.FieldLogger
}

func NewDispatcher(maxWorkers, jobQueueSize int, log logrus.FieldLogger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the workers and the dispatch loop. Jobs run with ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.WithField("workers", d.MaxWorkers).Info("Dispatcher starting")
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d.WorkerPool, &d.wg, d.log)
		d.Workers = append(d.Workers, worker)
		worker.Start(ctx)
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.JobQueue:
			metrics.DispatcherQueueDepth.Set(float64(len(d.JobQueue)))
			select {
			case jobChannel := <-d.WorkerPool:
				jobChannel <- job
			case <-d.quit:
				d.pending.Done()
				return
			}
			d.pending.Done()
		case <-d.quit:
			return
		}
	}
}

// SubmitJob queues job without blocking.
func (d *Dispatcher) SubmitJob(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	d.pending.Add(1)
	select {
	case d.JobQueue <- job:
		metrics.DispatcherQueueDepth.Set(float64(len(d.JobQueue)))
		d.log.WithField("job_id", job.ID()).Debug("Job queued")
		return nil
	default:
		d.pending.Done()
		d.log.WithField("job_id", job.ID()).Warn("Job queue full, rejecting job")
		return ErrQueueFull
	}
}

// Stop refuses new jobs, waits until every queued job has reached a worker
// and every worker has finished its current job.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.log.Info("Dispatcher draining")
	d.pending.Wait()
	close(d.quit)
	for _, worker := range d.Workers {
		worker.Stop()
	}
	d.wg.Wait()
	metrics.DispatcherQueueDepth.Set(0)
	d.log.Info("Dispatcher stopped")
}
