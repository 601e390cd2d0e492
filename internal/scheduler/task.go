package scheduler

import (
	"github.com/saferun-io/tee-fabric/internal/packet"
	"github.com/saferun-io/tee-fabric/internal/port"
)

// DefaultBatchSize bounds how many descriptors a Task pulls per turn.
const DefaultBatchSize = 32

// Task is a composed operator pipeline bound to one Queue and Pool: each
// turn it receives a fresh batch from the queue, runs Pipeline over it,
// and returns. A descriptor traverses the pipeline exactly once per
// receive and never survives across turns — Pipeline's terminal Send or
// SendAll is what hands it back to the queue or lets it fall to the free
// pool.
type Task struct {
	Queue     port.Queue
	Pool      *packet.Pool
	Pipeline  Stage
	BatchSize int

	packetsIn uint64
	runs      uint64
}

// NewTask builds a Task with DefaultBatchSize.
func NewTask(q port.Queue, pool *packet.Pool, pipeline Stage) *Task {
	return &Task{Queue: q, Pool: pool, Pipeline: pipeline, BatchSize: DefaultBatchSize}
}

// Execute pulls one batch and runs it through Pipeline. It returns the
// number of descriptors received this turn (0 is a normal empty poll, not
// an error — the scheduler simply moves on to the next task).
func (t *Task) Execute() (int, error) {
	slots := make([]uint64, t.BatchSize)
	n, err := t.Queue.Recv(slots)
	if err != nil {
		return 0, err
	}
	t.runs++
	if n == 0 {
		return 0, nil
	}
	slots = slots[:n]

	items := make([]Item, 0, n)
	for _, slot := range slots {
		buf, err := t.Pool.Get(slot)
		if err != nil {
			// A corrupted descriptor from the peer; nothing to run a
			// pipeline over, so it is simply not forwarded.
			continue
		}
		items = append(items, newItem(slot, buf))
	}
	if t.Pipeline != nil {
		items = t.Pipeline(items)
	}
	t.packetsIn += uint64(len(items))
	return n, nil
}

// PacketsIn is the running count of descriptors this task has accepted
// from its queue across all turns.
func (t *Task) PacketsIn() uint64 { return t.packetsIn }

// Runs is the number of times Execute has pulled a (possibly empty) batch.
func (t *Task) Runs() uint64 { return t.runs }
