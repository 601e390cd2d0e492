// Package scheduler implements the enclave's single-threaded cooperative
// batch scheduler: a round-robin cursor over a set of Tasks, each running
// a composed operator pipeline (Map, Filter, FilterMap, ForEach, GroupBy,
// Emit, Send, SendAll) over descriptors pulled from its Queue.
package scheduler

import "sync/atomic"

// Scheduler holds the runnable tasks and the round-robin cursor over
// them. It is not safe for concurrent use — it is driven by exactly one
// goroutine per spec, matching the "single-threaded cooperative" design
// with no preemption and no task affinity.
type Scheduler struct {
	tasks  []*Task
	cursor int
	stop   uint32
}

// New builds a Scheduler over tasks, run in the order given.
func New(tasks ...*Task) *Scheduler {
	return &Scheduler{tasks: tasks}
}

// Add appends a task to the runnable set.
func (s *Scheduler) Add(t *Task) { s.tasks = append(s.tasks, t) }

// Stop requests the run loop to exit after the task currently executing
// returns. Safe to call from another goroutine (e.g. a signal handler).
func (s *Scheduler) Stop() { atomic.StoreUint32(&s.stop, 1) }

func (s *Scheduler) stopped() bool { return atomic.LoadUint32(&s.stop) != 0 }

// RunOnce advances the round-robin cursor by one task and executes it.
// It is exported mainly for tests; Run is the normal entry point.
func (s *Scheduler) RunOnce() error {
	if len(s.tasks) == 0 {
		return nil
	}
	t := s.tasks[s.cursor]
	s.cursor = (s.cursor + 1) % len(s.tasks)
	_, err := t.Execute()
	return err
}

// Run drives the scheduler until Stop is called or a task returns an
// error; otherwise it keeps cycling tasks. Run does not itself watch the
// ring's STOP sentinel: the caller calls Stop once it observes it
// (cmd/enclave polls its SimQueue's Stopped for this).
func (s *Scheduler) Run() error {
	for !s.stopped() {
		if err := s.RunOnce(); err != nil {
			return err
		}
	}
	return nil
}

// Tasks returns the scheduler's runnable task set, in round-robin order.
func (s *Scheduler) Tasks() []*Task { return s.tasks }
