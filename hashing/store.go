package hashing

import (
	"fmt"
	"sync"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
)

// Store holds the active cost policy read by every hash operation.
//
// A Store is created with [DefaultConfig] and changed only through
// [Store.Configure], which swaps the whole policy at once. Verification
// reads the policy embedded in the digest and never consults the Store,
// except for its memory limit.
//
// # Thread safety
//
// All Store methods are safe for concurrent use by multiple goroutines.
// A [sync.RWMutex] serialises Configure against readers.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	maxMemory uint32
}

// StoreOption configures a [Store] at construction.
type StoreOption func(*Store)

// WithMemoryLimit rejects any hash or verification whose memory cost
// exceeds kib with [ErrMemoryLimit]. Zero leaves only the
// [argon2.MaxMemoryKiB] ceiling, which applies to every Store.
func WithMemoryLimit(kib uint32) StoreOption {
	return func(s *Store) {
		s.maxMemory = kib
	}
}

// NewStore returns a Store holding [DefaultConfig].
func NewStore(opts ...StoreOption) *Store {
	s := &Store{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure validates cfg and makes it the active policy. On error the
// previous policy stays in effect.
func (s *Store) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}

// Config returns a snapshot of the active policy.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// MemoryLimit returns the memory limit in KiB, or 0 when unlimited.
func (s *Store) MemoryLimit() uint32 {
	return s.maxMemory
}

// Hasher returns an [Argon2Hasher] for the active policy.
func (s *Store) Hasher(secret []byte) (*Argon2Hasher, error) {
	return NewArgon2Hasher(s.Config(), secret)
}

// Hash hashes password with the active policy.
//
// salt is the raw salt; it is base64-encoded and must then satisfy the
// digest format's salt rules and decode to at least [argon2.MinSaltLen]
// bytes. A nil secret selects the keyless hasher.
func (s *Store) Hash(password, salt, secret []byte) (string, error) {
	return hash(s.Config(), password, salt, secret, s.maxMemory)
}

// Verify checks password against digest using the parameters embedded in
// the digest.
//
// It returns (false, nil) for a well-formed digest that does not match, and
// an error for a malformed digest, an unknown algorithm or version, or
// parameters the library rejects.
func (s *Store) Verify(digest string, password, secret []byte) (bool, error) {
	return verify(digest, password, secret, s.maxMemory)
}

// NeedsRehash reports whether digest was produced under a policy other
// than the active one. On the next successful login, callers should hash
// the password again and persist the new digest when this returns true.
func (s *Store) NeedsRehash(digest string) (bool, error) {
	ph, err := ParsePasswordHash(digest)
	if err != nil {
		return false, err
	}
	cfg := s.Config()
	if DriverName(ph.Algorithm) != cfg.Driver {
		if _, err := DriverName(ph.Algorithm).Algorithm(); err != nil {
			return false, err
		}
		return true, nil
	}
	h, err := NewArgon2Hasher(cfg, nil)
	if err != nil {
		return false, err
	}
	return h.NeedsRehash(digest)
}

// Info extracts the parameters embedded in digest.
func (s *Store) Info(digest string) (HashInfo, error) {
	ph, err := ParsePasswordHash(digest)
	if err != nil {
		return HashInfo{}, err
	}
	return infoFromHash(ph)
}

// Hash hashes password under cfg without a [Store].
func Hash(cfg Config, password, salt, secret []byte) (string, error) {
	return hash(cfg, password, salt, secret, 0)
}

// Verify checks password against digest without a [Store].
func Verify(digest string, password, secret []byte) (bool, error) {
	return verify(digest, password, secret, 0)
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────────────────────────────────

func hash(cfg Config, password, salt, secret []byte, maxMemory uint32) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	s, err := EncodeSalt(salt)
	if err != nil {
		return "", err
	}
	if err := checkMemory(cfg.Memory, maxMemory); err != nil {
		return "", err
	}
	h, err := NewArgon2Hasher(cfg, secret)
	if err != nil {
		return "", err
	}
	return h.Make(password, s)
}

func verify(digest string, password, secret []byte, maxMemory uint32) (bool, error) {
	ph, err := ParsePasswordHash(digest)
	if err != nil {
		return false, err
	}
	dp, err := paramsFromHash(ph, uint32(argon2.DefaultVersion))
	if err != nil {
		return false, err
	}
	if err := checkMemory(dp.cfg.Memory, maxMemory); err != nil {
		return false, err
	}
	h, err := NewArgon2Hasher(dp.cfg, secret)
	if err != nil {
		return false, err
	}
	return h.CheckHash(password, ph)
}

func checkMemory(memory, limit uint32) error {
	if memory > argon2.MaxMemoryKiB {
		return fmt.Errorf("%w: %d KiB requested: %w", ErrMemoryLimit, memory, argon2.ErrMemory)
	}
	if limit != 0 && memory > limit {
		return fmt.Errorf("%w: %d KiB requested, limit is %d KiB", ErrMemoryLimit, memory, limit)
	}
	return nil
}
