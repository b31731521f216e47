package reactive

import (
	"context"
	"fmt"
	"sync"

	luxerr "github.com/vango-dev/lux/internal/errors"
)

// Priority orders scheduled jobs. Lower values run first.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

// String returns the name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// JobID identifies a scheduled job. The zero JobID is never assigned.
type JobID uint64

type job struct {
	id JobID
	fn func()
}

// Scheduler runs jobs in priority order. Jobs scheduled from any
// goroutine run serialized on the goroutine that calls Flush, or on the
// loop started by Start.
type Scheduler struct {
	mu      sync.Mutex
	queues  [3][]job
	lastID  JobID
	wake    chan struct{}
	running bool
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Schedule queues fn at priority p and returns its ID. An unknown
// priority is rejected with a zero ID.
func (s *Scheduler) Schedule(p Priority, fn func()) JobID {
	if p < PriorityHigh || p > PriorityLow || fn == nil {
		return 0
	}

	s.mu.Lock()
	s.lastID++
	id := s.lastID
	s.queues[p-1] = append(s.queues[p-1], job{id: id, fn: fn})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return id
}

// Post schedules fn at medium priority to run inside a Batch.
func (s *Scheduler) Post(fn func()) JobID {
	return s.Schedule(PriorityMedium, func() { Batch(fn) })
}

// Cancel removes a queued job and reports whether it was found. Jobs
// that already ran cannot be cancelled.
func (s *Scheduler) Cancel(id JobID) bool {
	if id == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.queues {
		for k, j := range q {
			if j.id == id {
				s.queues[i] = append(q[:k:k], q[k+1:]...)
				return true
			}
		}
	}
	return false
}

// Pending returns the number of queued jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.queues {
		n += len(q)
	}
	return n
}

// Flush runs queued jobs until every queue is empty, including jobs queued
// by the jobs themselves. Higher priorities are re-checked before every
// job. It returns the number of jobs run.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return 0
	}
	s.running = true
	s.mu.Unlock()

	ran := 0
	for {
		j, ok := s.next()
		if !ok {
			break
		}
		s.run(j)
		ran++
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return ran
}

// next pops the oldest job of the highest non-empty priority.
func (s *Scheduler) next() (job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.queues {
		if len(s.queues[i]) > 0 {
			j := s.queues[i][0]
			s.queues[i][0] = job{}
			s.queues[i] = s.queues[i][1:]
			return j, true
		}
	}
	return job{}, false
}

func (s *Scheduler) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			getLogger().Error("reactive: scheduled job panicked",
				"code", luxerr.CodeSchedulerJob, "job", uint64(j.id), "error", fmt.Sprint(r))
		}
	}()
	j.fn()
}

// Start runs queued jobs on the calling goroutine whenever new work
// arrives, until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		s.Flush()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}
