package scheduler

import "github.com/saferun-io/tee-fabric/internal/packet"

// ErrorKind discriminates the three ways an item can finish its trip
// through a pipeline.
type ErrorKind int

const (
	// KindEmit means processing is complete; the packet is forwarded as-is.
	KindEmit ErrorKind = iota
	// KindDrop means the packet is intentionally discarded.
	KindDrop
	// KindAbort means the packet is discarded because an operator failed.
	KindAbort
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmit:
		return "emit"
	case KindDrop:
		return "drop"
	case KindAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// PacketError is the tagged union an operator resolves an item to: Emit,
// Drop, or Abort(cause). It is a struct rather than a Go error, since Emit
// and Drop are not failures — only Abort carries a Cause.
type PacketError struct {
	Kind  ErrorKind
	Buf   *packet.Buffer
	Cause error
}

func (e PacketError) Error() string {
	if e.Kind == KindAbort && e.Cause != nil {
		return "scheduler: aborted: " + e.Cause.Error()
	}
	return "scheduler: " + e.Kind.String()
}
