// Package rawmem implements the allocator behind the module's raw-memory
// boundary: a bump allocator over a fixed address range with exact-size free
// lists for reuse.
//
// The allocator only does bookkeeping on addresses; it never touches the
// bytes. The caller maps an address range it owns (a Go byte slice in the
// wasm guest, a test buffer elsewhere) and reads or writes through its own
// accessor.
package rawmem

import (
	"errors"
	"fmt"
	"math"
)

// Align is the alignment of every block, the natural pointer alignment of
// the largest supported target.
const Align = 8

// reserved keeps the first word unused so that base+0, and in particular
// address 0 when base is 0, is never handed out; 0 is the null pointer.
const reserved = Align

// ErrExhausted is returned when a request cannot be satisfied.
var ErrExhausted = errors.New("rawmem: memory exhausted")

// Arena allocates blocks from [base, base+size).
//
// Blocks are released with the size they were allocated with; the size is
// not tracked per block. Releasing with a different size, or releasing an
// address that was not returned by Alloc, is undefined.
//
// Arena is not safe for concurrent use.
type Arena struct {
	base  uint32
	size  uint32
	next  uint32              // bump offset
	free  map[uint32][]uint32 // rounded size -> offsets
	inUse uint32
}

// New returns an Arena covering size bytes starting at base.
func New(base, size uint32) *Arena {
	if uint64(base)+uint64(size) > math.MaxUint32+1 {
		size = uint32(math.MaxUint32 + 1 - uint64(base))
	}
	return &Arena{
		base: base,
		size: size,
		next: reserved,
		free: make(map[uint32][]uint32),
	}
}

// Alloc returns the address of a block of at least n bytes aligned to
// [Align]. Zero-sized requests get a distinct minimal block.
func (a *Arena) Alloc(n uint32) (uint32, error) {
	sz, ok := roundUp(n)
	if !ok {
		return 0, fmt.Errorf("%w: %d bytes requested", ErrExhausted, n)
	}

	if list := a.free[sz]; len(list) > 0 {
		off := list[len(list)-1]
		a.free[sz] = list[:len(list)-1]
		a.inUse += sz
		return a.base + off, nil
	}

	if a.next > a.size || a.size-a.next < sz {
		return 0, fmt.Errorf("%w: %d bytes requested, %d available", ErrExhausted, n, a.Available())
	}
	off := a.next
	a.next += sz
	a.inUse += sz
	return a.base + off, nil
}

// Free releases the block at ptr that was allocated with size n.
// Freeing the null pointer is a no-op.
func (a *Arena) Free(ptr, n uint32) {
	if ptr == 0 || ptr < a.base+reserved {
		return
	}
	sz, ok := roundUp(n)
	if !ok {
		return
	}
	off := ptr - a.base
	a.inUse -= min(sz, a.inUse)

	if off+sz == a.next {
		a.next = off
		return
	}
	a.free[sz] = append(a.free[sz], off)
}

// InUse returns the number of bytes currently allocated, after rounding.
func (a *Arena) InUse() uint32 { return a.inUse }

// Available returns the number of bytes left to the bump pointer. Blocks on
// the free lists are not counted.
func (a *Arena) Available() uint32 {
	if a.next >= a.size {
		return 0
	}
	return a.size - a.next
}

// Reset forgets every allocation.
func (a *Arena) Reset() {
	a.next = reserved
	a.inUse = 0
	clear(a.free)
}

func roundUp(n uint32) (uint32, bool) {
	if n == 0 {
		return Align, true
	}
	r := (uint64(n) + Align - 1) &^ (Align - 1)
	if r > math.MaxUint32 {
		return 0, false
	}
	return uint32(r), true
}
