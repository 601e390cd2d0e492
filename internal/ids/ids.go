// Package ids generates the ring rendezvous names exchanged over the
// host/enclave handshake, so concurrent runs on one machine never collide
// on the same /dev/shm path.
package ids

import "github.com/rs/xid"

// NewRunID returns a short collision-resistant identifier for one
// (host, enclave-queue) run.
func NewRunID() string {
	return xid.New().String()
}

// RecvqName returns the recvq ring's shared-memory name for run id.
func RecvqName(id string) string { return "sb_recvq_" + id }

// SendqName returns the sendq ring's shared-memory name for run id.
func SendqName(id string) string { return "sb_sendq_" + id }
