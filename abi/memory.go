package abi

import "encoding/binary"

// Memory is a little-endian linear memory addressed by 32-bit offsets.
// Read may return a view into the memory; callers copy before keeping it.
//
// The method set matches wazero's api.Memory, so a host-side instance's
// memory satisfies it directly.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset, v uint32) bool
}

// SliceMemory exposes a byte slice as the address range
// [base, base+len(buf)). Addresses outside it are out of bounds.
type SliceMemory struct {
	base uint32
	buf  []byte
}

// NewSliceMemory maps buf at base.
func NewSliceMemory(base uint32, buf []byte) *SliceMemory {
	return &SliceMemory{base: base, buf: buf}
}

// Base returns the first mapped address.
func (m *SliceMemory) Base() uint32 { return m.base }

// Size returns the number of mapped bytes.
func (m *SliceMemory) Size() uint32 { return uint32(len(m.buf)) }

func (m *SliceMemory) span(offset, n uint32) ([]byte, bool) {
	if offset < m.base {
		return nil, false
	}
	start := uint64(offset - m.base)
	end := start + uint64(n)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[start:end:end], true
}

func (m *SliceMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	return m.span(offset, byteCount)
}

func (m *SliceMemory) Write(offset uint32, v []byte) bool {
	dst, ok := m.span(offset, uint32(len(v)))
	if !ok {
		return false
	}
	copy(dst, v)
	return true
}

func (m *SliceMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	b, ok := m.span(offset, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (m *SliceMemory) WriteUint32Le(offset, v uint32) bool {
	b, ok := m.span(offset, 4)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(b, v)
	return true
}
