package shm

import (
	"fmt"
	"sync"
)

// heapRegistry backs same-process "shared memory": both the creator and the
// attacher run in the same Go process (simulation ports, tests) and simply
// share the same backing slice, the way
// original_source/framework-inside/src/heap_ring/ring_buffer.rs avoids the
// real shm_open/mmap path for in-process use.
type heapRegistry struct {
	mu   sync.Mutex
	segs map[string][]uint64
}

var defaultHeap = &heapRegistry{segs: map[string][]uint64{}}

// Heap is a Creator+Attacher pair usable within a single process, e.g. to
// drive the scheduler and forwarder against each other in tests without a
// real shared-memory mapping.
type Heap struct{}

type heapSegment struct {
	name string
	w    []uint64
}

func (s *heapSegment) Words() []uint64 { return s.w }
func (s *heapSegment) Name() string    { return s.name }
func (s *heapSegment) Close() error    { return nil }

// Create allocates a zeroed backing slice under name. It is an error to
// create the same name twice without an intervening Unlink.
func (Heap) Create(name string, slotCount int) (Segment, error) {
	defaultHeap.mu.Lock()
	defer defaultHeap.mu.Unlock()
	if _, ok := defaultHeap.segs[name]; ok {
		return nil, fmt.Errorf("shm: heap segment %q already exists", name)
	}
	words := make([]uint64, ByteLen(slotCount)/8)
	defaultHeap.segs[name] = words
	return &heapSegment{name: name, w: words}, nil
}

// Attach returns the same backing slice a prior Create registered.
func (Heap) Attach(name string) (Segment, error) {
	defaultHeap.mu.Lock()
	defer defaultHeap.mu.Unlock()
	words, ok := defaultHeap.segs[name]
	if !ok {
		return nil, fmt.Errorf("shm: no heap segment named %q", name)
	}
	return &heapSegment{name: name, w: words}, nil
}

// Unlink removes the named segment from the registry.
func (Heap) Unlink(name string) error {
	defaultHeap.mu.Lock()
	defer defaultHeap.mu.Unlock()
	delete(defaultHeap.segs, name)
	return nil
}
