package worker

import (
	"log"
	"sync"

	"turbo-export/internal/core/domain"
)

// SharedPool is a process-wide pool handle constructed by the host and passed
// by reference to whoever submits work. The underlying Pool is created on
// first use and lives until Shutdown is called explicitly.
type SharedPool struct {
	workers       int
	queueCapacity int
	processor     Processor

	initOnce sync.Once
	mu       sync.Mutex
	pool     *Pool
	closed   bool
}

func NewSharedPool(workers, queueCapacity int, processor Processor) *SharedPool {
	return &SharedPool{
		workers:       workers,
		queueCapacity: queueCapacity,
		processor:     processor,
	}
}

// Submit lazily starts the pool and enqueues job. It returns false if the
// shared pool has been shut down.
func (s *SharedPool) Submit(job *domain.Job) bool {
	pool := s.get()
	if pool == nil {
		return false
	}
	return pool.Submit(job)
}

// Started reports whether the underlying pool has been created.
func (s *SharedPool) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool != nil
}

// Shutdown drains and stops the underlying pool. It is a no-op if the pool
// was never started and safe to call more than once.
func (s *SharedPool) Shutdown() {
	s.mu.Lock()
	s.closed = true
	pool := s.pool
	s.mu.Unlock()

	if pool != nil {
		pool.Shutdown()
		log.Printf("[DEBUG] SharedPool - shut down")
	}
}

func (s *SharedPool) get() *Pool {
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.pool = NewPool(s.workers, s.queueCapacity, s.processor)
		s.pool.Start()
		log.Printf("[DEBUG] SharedPool - created pool with %d workers", s.pool.Workers())
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool
}
