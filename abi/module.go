package abi

import (
	"fmt"
	"unicode/utf8"

	"github.com/hasbyte1/go-argon2-wasm/hashing"
	"github.com/hasbyte1/go-argon2-wasm/internal/rawmem"
)

// ScratchSize is the capacity of the failure message buffer. Longer
// messages are truncated.
const ScratchSize = 256

// Reporter receives the address and length of a failure message. The
// message is only valid until the next call into the module.
type Reporter func(ptr, n uint32)

// Module implements the exported operations over one memory, one arena and
// one parameter store.
//
// Module is not safe for concurrent use; the host serialises calls.
type Module struct {
	mem     Memory
	arena   *rawmem.Arena
	store   *hashing.Store
	report  Reporter
	scratch uint32
}

// NewModule reserves the failure message buffer from arena and returns a
// Module. The arena must allocate addresses that are valid in mem.
func NewModule(mem Memory, arena *rawmem.Arena, store *hashing.Store, report Reporter) (*Module, error) {
	scratch, err := arena.Alloc(ScratchSize)
	if err != nil {
		return nil, fmt.Errorf("abi: reserve failure buffer: %w", err)
	}
	if report == nil {
		report = func(uint32, uint32) {}
	}
	return &Module{
		mem:     mem,
		arena:   arena,
		store:   store,
		report:  report,
		scratch: scratch,
	}, nil
}

// Store returns the parameter store the module hashes with.
func (m *Module) Store() *hashing.Store { return m.store }

// fail reports err through the failure bridge and returns its status.
func (m *Module) fail(op string, err error) Status {
	msg := op + ": " + err.Error()
	if len(msg) > ScratchSize {
		n := ScratchSize
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	if !m.mem.Write(m.scratch, []byte(msg)) {
		msg = ""
	}
	m.report(m.scratch, uint32(len(msg)))
	return StatusOf(err)
}

// Alloc returns a block of at least size bytes, or 0 after reporting the
// failure when the arena is exhausted.
func (m *Module) Alloc(size uint32) uint32 {
	ptr, err := m.arena.Alloc(size)
	if err != nil {
		m.fail("alloc", err)
		return 0
	}
	return ptr
}

// Dealloc releases a block obtained from Alloc, or an [Owned] buffer,
// with the size it was obtained with.
func (m *Module) Dealloc(ptr, size uint32) {
	m.arena.Free(ptr, size)
}

// SetupParams replaces the store's policy. tag is an algorithm tag, see
// [ParseTag]; version is 0x10 or 0x13.
func (m *Module) SetupParams(tag, version, mCost, tCost, pCost uint32) Status {
	driver, err := ParseTag(tag)
	if err != nil {
		return m.fail("setup_params", err)
	}
	cfg, err := hashing.NewConfig(driver, version, mCost, tCost, pCost)
	if err != nil {
		return m.fail("setup_params", err)
	}
	if err := m.store.Configure(cfg); err != nil {
		return m.fail("setup_params", err)
	}
	return OK
}

// Hash digests the password with the active policy and writes the address
// of a NUL-terminated [Owned] digest at out. A null secret selects the
// keyless hasher.
func (m *Module) Hash(password, salt, secret Borrowed, out uint32) Status {
	digest, err := m.hash(password, salt, secret)
	if err != nil {
		return m.fail("hash", err)
	}
	owned, err := m.own(digest)
	if err != nil {
		return m.fail("hash", err)
	}
	if !m.mem.WriteUint32Le(out, owned.Ptr) {
		owned.Release(m)
		return m.fail("hash", fmt.Errorf("%w: output pointer %#x", ErrOutOfBounds, out))
	}
	return OK
}

func (m *Module) hash(password, salt, secret Borrowed) (string, error) {
	pw, err := password.Bytes(m.mem)
	if err != nil {
		return "", fmt.Errorf("password: %w", err)
	}
	s, err := salt.Bytes(m.mem)
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	key, err := secret.Optional(m.mem)
	if err != nil {
		return "", fmt.Errorf("secret: %w", err)
	}
	return m.store.Hash(pw, s, key)
}

// Verify checks the password against the digest and writes 1 (match) or
// 0 (no match) at out. A digest that is not valid UTF-8 or not a valid
// Argon2 digest is a failure, not a mismatch.
func (m *Module) Verify(digest, password, secret Borrowed, out uint32) Status {
	ok, err := m.verify(digest, password, secret)
	if err != nil {
		return m.fail("verify", err)
	}
	var v uint32
	if ok {
		v = 1
	}
	if !m.mem.WriteUint32Le(out, v) {
		return m.fail("verify", fmt.Errorf("%w: output pointer %#x", ErrOutOfBounds, out))
	}
	return OK
}

func (m *Module) verify(digest, password, secret Borrowed) (bool, error) {
	d, err := digest.Bytes(m.mem)
	if err != nil {
		return false, fmt.Errorf("digest: %w", err)
	}
	if !utf8.Valid(d) {
		return false, fmt.Errorf("%w: digest is not valid UTF-8", hashing.ErrInvalidHash)
	}
	pw, err := password.Bytes(m.mem)
	if err != nil {
		return false, fmt.Errorf("password: %w", err)
	}
	key, err := secret.Optional(m.mem)
	if err != nil {
		return false, fmt.Errorf("secret: %w", err)
	}
	return m.store.Verify(string(d), pw, key)
}

// own copies s into a new NUL-terminated block.
func (m *Module) own(s string) (Owned, error) {
	n := uint32(len(s)) + 1
	ptr, err := m.arena.Alloc(n)
	if err != nil {
		return Owned{}, err
	}
	buf := make([]byte, n)
	copy(buf, s)
	if !m.mem.Write(ptr, buf) {
		m.arena.Free(ptr, n)
		return Owned{}, fmt.Errorf("%w: arena block %#x", ErrOutOfBounds, ptr)
	}
	return Owned{Ptr: ptr, Len: n}, nil
}
