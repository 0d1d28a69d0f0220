package worker

import (
	"fmt"
	"log"
	"sync"

	"turbo-export/internal/core/domain"
)

const DefaultQueueCapacity = 100

// Processor renders a single job. Implementations must be safe for
// concurrent use by all workers of a pool.
type Processor interface {
	Process(job *domain.Job) (domain.Result, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(job *domain.Job) (domain.Result, error)

func (f ProcessorFunc) Process(job *domain.Job) (domain.Result, error) {
	return f(job)
}

// Pool runs a fixed number of workers that consume jobs from a bounded queue
// and fulfil each job's completion slot exactly once.
type Pool struct {
	workers   int
	processor Processor
	queue     chan *domain.Job

	startOnce sync.Once
	closeOnce sync.Once
	mu        sync.RWMutex
	stopped   bool
	wg        sync.WaitGroup

	// startMu is never held by a Submit blocked on a full queue.
	startMu sync.Mutex
	started bool
	retired bool
}

func NewPool(workers, queueCapacity int, processor Processor) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = DefaultQueueCapacity
	}
	return &Pool{
		workers:   workers,
		processor: processor,
		queue:     make(chan *domain.Job, queueCapacity),
	}
}

// Start launches the workers. Calling it again, or after Shutdown, has no
// effect.
func (p *Pool) Start() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.retired {
		return
	}
	p.startOnce.Do(func() {
		p.started = true
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.run(i)
		}
		log.Printf("[DEBUG] WorkerPool - started %d workers (queue capacity %d)", p.workers, cap(p.queue))
	})
}

// Submit enqueues job, blocking while the queue is full. It returns false
// without enqueuing once Shutdown has been called.
func (p *Pool) Submit(job *domain.Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}
	JobsQueued.Inc()
	p.queue <- job
	return true
}

// Shutdown stops accepting jobs, lets the workers drain the queue and waits
// for them to exit. Jobs queued on a pool that was never started are
// completed with domain.ErrPoolClosed. It is safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.stopped = true
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.mu.Unlock()

	p.startMu.Lock()
	p.retired = true
	started := p.started
	p.startMu.Unlock()

	if !started {
		for job := range p.queue {
			JobsQueued.Dec()
			job.Complete(domain.Result{}, domain.ErrPoolClosed)
		}
	}
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// QueueLen returns the number of jobs waiting to be picked up.
func (p *Pool) QueueLen() int {
	return len(p.queue)
}

func (p *Pool) run(id int) {
	defer p.wg.Done()

	for job := range p.queue {
		JobsQueued.Dec()
		result, err := Run(p.processor, job)
		job.Complete(result, err)
	}
	log.Printf("[DEBUG] WorkerPool - worker %d exiting", id)
}

// Run processes job with processor, turning a panic into an error so the
// job's completion slot is always fulfilled.
func Run(processor Processor, job *domain.Job) (result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DEBUG] WorkerPool - job %s panicked: %v", job.ID, r)
			result = domain.Result{}
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return processor.Process(job)
}
