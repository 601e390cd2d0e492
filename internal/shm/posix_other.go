//go:build !linux

package shm

// Posix falls back to the in-process heap registry on non-Linux build
// targets, where there is no /dev/shm tmpfs convention to rely on. Real
// cross-process deployments of this framework are Linux-only, matching the
// NIC kernel-bypass driver's own platform constraint.
type Posix = Heap
