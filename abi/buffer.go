package abi

import "fmt"

// Borrowed is an input buffer owned by the caller. It is only valid for the
// duration of the call and is copied before use.
type Borrowed struct {
	Ptr uint32
	Len uint32
}

// Null reports whether b is the null buffer, meaning "absent".
func (b Borrowed) Null() bool { return b.Ptr == 0 }

// Bytes copies the buffer out of mem. A zero-length buffer yields an empty,
// non-nil slice.
func (b Borrowed) Bytes(mem Memory) ([]byte, error) {
	if b.Len == 0 {
		return []byte{}, nil
	}
	view, ok := mem.Read(b.Ptr, b.Len)
	if !ok {
		return nil, fmt.Errorf("%w: [%#x, +%d)", ErrOutOfBounds, b.Ptr, b.Len)
	}
	return append([]byte(nil), view...), nil
}

// Optional is [Borrowed.Bytes], except that the null buffer yields nil.
func (b Borrowed) Optional(mem Memory) ([]byte, error) {
	if b.Null() {
		return nil, nil
	}
	return b.Bytes(mem)
}

// Owned is an output buffer whose ownership has passed to the caller. Len
// includes the trailing NUL and is the size to release it with.
type Owned struct {
	Ptr uint32
	Len uint32
}

// Release returns the buffer to the arena.
func (o Owned) Release(m *Module) {
	m.Dealloc(o.Ptr, o.Len)
}
