package port

import "sync"

// LoopbackDriver is a Driver that echoes every descriptor sent back to
// itself. cmd/host installs it on every queue, whatever PortConfig.Loopback
// says; it stands in for a real NIC when running the host/enclave wiring
// standalone, e.g. for local development or the test suite.
type LoopbackDriver struct {
	mu    sync.Mutex
	queue []uint64
}

func (d *LoopbackDriver) RecvBurst(descs []uint64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := copy(descs, d.queue)
	d.queue = d.queue[n:]
	return n
}

func (d *LoopbackDriver) SendBurst(descs []uint64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, descs...)
	return len(descs)
}
