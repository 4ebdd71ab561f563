// Package wlproto provides typed bindings for the Wayland protocol
// objects wayfreeze needs, built on the wlturbo client transport.
//
// Each binding wraps one protocol interface: request methods marshal
// arguments through wlturbo, and exported callback fields deliver the
// events the client consumes. Callbacks left nil drop their events.
// Protocol objects that take other objects as arguments accept
// anything with an object ID (wlturbo.Object), so callers may pass
// either a binding from this package or their own implementation.
package wlproto

import (
	"encoding/binary"
)

// eventReader decodes a wire-format event payload. All values are
// little-endian 32-bit words; strings carry their length (including
// the NUL terminator) and are padded to a word boundary. A truncated
// payload yields zero values rather than a panic.
type eventReader struct {
	data []byte
	off  int
}

func (r *eventReader) uint32() uint32 {
	if r.off+4 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *eventReader) int32() int32 {
	return int32(r.uint32())
}

func (r *eventReader) string() string {
	n := int(r.uint32())
	if n == 0 || r.off+n > len(r.data) {
		r.off = len(r.data)
		return ""
	}
	s := string(r.data[r.off : r.off+n-1])
	r.off += n
	if pad := r.off % 4; pad != 0 {
		r.off += 4 - pad
	}
	return s
}
