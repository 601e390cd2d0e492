package scheduler

import "github.com/saferun-io/tee-fabric/internal/port"

// Send marks the end of a pipeline: it transmits every Emit'd item's slot
// on q, in the order they appear in the batch. Drop and Abort items are
// not transmitted — they are simply excluded, returning their slot to
// whichever side owns buffer allocation for reuse. No further Stage may
// run after Send.
func Send(q port.Queue) Stage {
	return func(items []Item) []Item {
		drainToQueue(q, collectSlots(items, KindEmit))
		return items
	}
}

// SendAll marks the end of a pipeline like Send, but additionally
// transmits Drop items unchanged; only Abort still drops its packet. Used
// when a pipeline wants drop-marked packets to reach the wire regardless
// (e.g. a monitoring tap that must forward everything it observed).
func SendAll(q port.Queue) Stage {
	return func(items []Item) []Item {
		drainToQueue(q, collectSlots(items, KindEmit, KindDrop))
		return items
	}
}

func collectSlots(items []Item, kinds ...ErrorKind) []uint64 {
	want := make(map[ErrorKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]uint64, 0, len(items))
	for _, it := range items {
		if it.Err != nil && want[it.Err.Kind] {
			out = append(out, it.Slot)
		}
	}
	return out
}

// drainToQueue pushes slots onto q, retrying with the unsent suffix on a
// partial send rather than dropping it — the reslice-and-retry convention
// this framework uses in place of the original's `drain(..sent)` call, so
// a transient backpressure on the underlying queue can never silently
// lose a descriptor. A driver error is fatal to the batch and not
// retried, matching the "driver errors are total" taxonomy.
func drainToQueue(q port.Queue, slots []uint64) {
	remaining := slots
	for len(remaining) > 0 {
		n, err := q.Send(remaining)
		if err != nil {
			return
		}
		remaining = remaining[n:]
	}
}
