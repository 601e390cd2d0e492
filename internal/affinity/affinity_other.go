//go:build !linux

package affinity

import "runtime"

// Pin is a no-op outside Linux: there is no portable SCHED_SETAFFINITY
// equivalent this pack's dependencies cover, so we only lock the goroutine
// to its OS thread and let the host scheduler place it.
func Pin(core int) error {
	runtime.LockOSThread()
	return nil
}

// Available reports the number of logical CPUs visible to the Go runtime.
func Available() (int, error) {
	return runtime.NumCPU(), nil
}
