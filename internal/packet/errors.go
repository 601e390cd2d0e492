package packet

import "errors"

// Buffer edit and parse errors, per spec.md §4.A/§7.
var (
	// ErrBadOffset is returned when an operation targets an offset past
	// the buffer's current live data, and by the header parsers when a
	// header would extend past the buffer's live data.
	ErrBadOffset = errors.New("packet: offset past live data")
	// ErrOutOfBuffer names a header extending past the buffer's live data.
	// The parsers in this package report that case as ErrBadOffset and do
	// not return ErrOutOfBuffer.
	ErrOutOfBuffer = errors.New("packet: header extends past live data")
	// ErrNotResized is returned when a resize would exceed buffer capacity.
	ErrNotResized = errors.New("packet: insufficient head/tail room")
	// ErrParse is returned when a header's internal fields are
	// inconsistent (e.g. a length field that doesn't match reality).
	ErrParse = errors.New("packet: inconsistent header fields")
)
