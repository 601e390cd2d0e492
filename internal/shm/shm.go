// Package shm provides the shared-memory segment backing for a ring: the
// host side creates a named POSIX shared-memory object sized for a ring
// header plus its slot array and maps it read/write; the enclave side
// attaches the same segment by name. An in-process Heap variant backs
// same-process simulation and tests without touching the filesystem.
package shm

import "github.com/saferun-io/tee-fabric/internal/ring"

// Segment is a mapped region of memory big enough to hold a ring's header
// and slot array, viewed as a slice of 64-bit words.
type Segment interface {
	// Words returns the mapped region as a slice of uint64, length
	// ring.WordCount+slotCount.
	Words() []uint64
	// Name is the rendezvous identifier other processes attach by.
	Name() string
	// Close unmaps the segment. The creator should also call Unlink.
	Close() error
}

// Creator creates and owns the backing object for a ring segment (the host
// side, by convention in spec.md §4.B).
type Creator interface {
	// Create allocates a new named segment sized for slotCount ring slots
	// and maps it read/write.
	Create(name string, slotCount int) (Segment, error)
	// Unlink removes the named segment from the filesystem/namespace once
	// all peers are done with it. Safe to call after Close.
	Unlink(name string) error
}

// Attacher attaches to a segment created by a Creator elsewhere (the
// enclave side).
type Attacher interface {
	Attach(name string) (Segment, error)
}

// ByteLen returns the number of bytes a ring segment with slotCount slots
// occupies: the four header words plus one word per slot.
func ByteLen(slotCount int) int {
	return (ring.WordCount + slotCount) * 8
}
