package scheduler

import "github.com/saferun-io/tee-fabric/internal/packet"

// Item is one packet's state as it travels through a Task's pipeline: its
// ring slot, the dereferenced buffer, and a resolution once some operator
// has decided its fate. Err is nil while the item is still live (subject
// to further Map/Filter/ForEach/GroupBy operators); once set, later
// operators in the spec's table leave it untouched except Emit (which
// only ever applies to still-live items) and the terminal Send/SendAll.
type Item struct {
	Slot uint64
	Buf  *packet.Buffer
	Err  *PacketError
}

func newItem(slot uint64, buf *packet.Buffer) Item {
	return Item{Slot: slot, Buf: buf}
}

func (it Item) live() bool { return it.Err == nil }

func (it *Item) abort(cause error) {
	it.Err = &PacketError{Kind: KindAbort, Buf: it.Buf, Cause: cause}
}

func (it *Item) drop() {
	it.Err = &PacketError{Kind: KindDrop, Buf: it.Buf}
}

func (it *Item) emit() {
	it.Err = &PacketError{Kind: KindEmit, Buf: it.Buf}
}

// Stage is one pipeline operator. Every Stage preserves the length and
// relative order of its input batch: operators only ever annotate an
// Item's fate, never remove or reorder it. This is what lets GroupBy
// scatter processed subgroups back into their original batch positions,
// and what Send/SendAll rely on to preserve within-batch transmit order.
type Stage func(items []Item) []Item
