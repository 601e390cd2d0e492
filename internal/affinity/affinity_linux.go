//go:build linux

// Package affinity pins the calling OS thread to a single CPU core, used by
// the host forwarder and enclave scheduler loops so that each owns a
// dedicated physical core (spec.md §4.C).
package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its current OS thread and restricts
// that thread's scheduling affinity to core. Callers should invoke Pin
// once at the top of a forwarder or scheduler loop's goroutine.
func Pin(core int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: pin to core %d: %w", core, err)
	}
	return nil
}

// Available returns the number of CPUs visible to this process's affinity
// mask, used at startup to validate the "cores >= queues+enclaves+1"
// invariant from spec.md §4.C.
func Available() (int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0, fmt.Errorf("affinity: query available cores: %w", err)
	}
	return set.Count(), nil
}
