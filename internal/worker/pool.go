package worker

import (
	"log/slog"
	"sync"

	"github.com/baharkarakas/sagepaypi/internal/metrics"
)

const queueSize = 1024

type task func()

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	jobs    chan task
}

func NewPool(n int) *Pool { return newPool(n, queueSize) }

func newPool(n, size int) *Pool {
	p := &Pool{jobs: make(chan task, size)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				run(job)
			}
		}()
	}
	return p
}

// run keeps a panicking task from taking the worker down.
func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker task panic", "err", rec)
		}
	}()
	job()
}

// Submit queues f without blocking. It reports false, dropping f, when the
// queue is full or the pool has been stopped.
func (p *Pool) Submit(f task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		slog.Warn("worker task dropped", "reason", "stopped")
		return false
	}
	select {
	case p.jobs <- f:
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
		return true
	default:
		slog.Warn("worker task dropped", "reason", "queue full", "queue", cap(p.jobs))
		return false
	}
}

// Stop waits for queued tasks to finish. Later submissions are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
