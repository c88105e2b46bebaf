package tilecache

import (
	"sync"
	"time"
)

// Task is a unit of work the WorkerPool executes. Job implements Task; the
// pool itself knows nothing about Jobs, keeping the scheduling mechanism
// independent of the HTTP-cache domain logic above it.
type Task interface {
	Run()
	Cancel()
}

// WorkerPool is a bounded goroutine pool whose queue is drained newest
// first: a user scrolling a map generates many requests, most of which are
// stale by the time a worker is free, so LIFO keeps the pool responsive to
// what was most recently asked for. Workers beyond the core size exit
// after sitting idle for keepAlive; the two core workers never time out.
type WorkerPool struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue     []Task
	coreSize  int
	maxSize   int
	keepAlive time.Duration

	live   int
	idle   int
	closed bool
}

// NewWorkerPool constructs a pool with a default core size of 2 and the
// given maximum size (cache.jcs.max_threads; defaults to 10 when
// maxSize <= 0).
func NewWorkerPool(maxSize int) *WorkerPool {
	if maxSize <= 0 {
		maxSize = 10
	}
	if maxSize < 2 {
		maxSize = 2
	}
	p := &WorkerPool{
		coreSize:  2,
		maxSize:   maxSize,
		keepAlive: 30 * time.Second,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Submit enqueues t at the head of the LIFO queue and spins up a new worker
// goroutine if every existing worker is busy and the pool is under its
// maximum size. Submitting to a closed pool is a silent no-op: by the time
// a pool is closed, nothing should still be reaching it.
func (p *WorkerPool) Submit(t Task) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.queue = append(p.queue, t)
	spawn := p.idle == 0 && p.live < p.maxSize
	if spawn {
		p.live++
	}
	p.mu.Unlock()

	if spawn {
		go p.runWorker()
	}
	p.cond.Signal()
}

// CancelQueued removes every task still waiting in the queue (not yet
// picked up by a worker) and invokes Cancel on each. Running tasks are left
// alone; a partially completed fetch still caches its result.
func (p *WorkerPool) CancelQueued() {
	p.mu.Lock()
	cancelled := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, t := range cancelled {
		t.Cancel()
	}
}

// Close stops accepting new work and wakes every worker so idle ones can
// exit once the queue drains.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

func (p *WorkerPool) runWorker() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.idle++
			var timedOut bool
			if p.live <= p.coreSize {
				p.cond.Wait()
			} else {
				timedOut = p.waitTimeout(p.keepAlive)
			}
			p.idle--
			if timedOut {
				p.live--
				p.mu.Unlock()
				return
			}
		}
		if p.closed && len(p.queue) == 0 {
			p.live--
			p.mu.Unlock()
			return
		}

		n := len(p.queue) - 1
		task := p.queue[n]
		p.queue = p.queue[:n]
		p.mu.Unlock()

		task.Run()
	}
}

// waitTimeout must be called with p.mu held. It waits on p.cond for up to d
// and reports whether it returned because of the timeout rather than a real
// Signal/Broadcast.
func (p *WorkerPool) waitTimeout(d time.Duration) bool {
	timedOut := make(chan struct{})
	timer := time.AfterFunc(d, func() {
		close(timedOut)
		p.cond.Broadcast()
	})
	p.cond.Wait()
	timer.Stop()

	select {
	case <-timedOut:
		return true
	default:
		return false
	}
}
