package host

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hasbyte1/go-argon2-wasm/hashing"
)

// Supervisor owns one [Instance] and replaces it when it is poisoned. The
// last configuration applied through the Supervisor is replayed on every
// replacement, so callers see one continuous policy.
//
// Calls are serialised; Supervisor is safe for concurrent use.
type Supervisor struct {
	rt *Runtime

	mu     sync.Mutex
	inst   *Instance
	cfg    *hashing.Config
	closed bool
}

// NewSupervisor instantiates the first instance.
func NewSupervisor(ctx context.Context, rt *Runtime) (*Supervisor, error) {
	inst, err := rt.Instantiate(ctx)
	if err != nil {
		return nil, err
	}
	return &Supervisor{rt: rt, inst: inst}, nil
}

// instance returns a healthy instance, replacing a poisoned one. mu must
// be held.
func (s *Supervisor) instance(ctx context.Context) (*Instance, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.inst != nil && !s.inst.Poisoned() {
		return s.inst, nil
	}

	if s.inst != nil {
		old := s.inst.ID()
		_ = s.inst.Close(ctx)
		s.inst = nil
		s.rt.log.Info("reloading module", zap.String("replaces", old))
	}
	inst, err := s.rt.Instantiate(ctx)
	if err != nil {
		return nil, err
	}
	s.rt.metrics.reload()

	if s.cfg != nil {
		if err := inst.Configure(ctx, *s.cfg); err != nil {
			_ = inst.Close(ctx)
			return nil, err
		}
	}
	s.inst = inst
	return inst, nil
}

// Configure applies cfg and remembers it for replay.
func (s *Supervisor) Configure(ctx context.Context, cfg hashing.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.instance(ctx)
	if err != nil {
		return err
	}
	if err := inst.Configure(ctx, cfg); err != nil {
		return err
	}
	s.cfg = &cfg
	return nil
}

// Config returns the last configuration applied, or false if none was.
func (s *Supervisor) Config() (hashing.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return hashing.Config{}, false
	}
	return *s.cfg, true
}

// Hash is [Instance.Hash] on the current instance.
func (s *Supervisor) Hash(ctx context.Context, password, salt, secret []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.instance(ctx)
	if err != nil {
		return "", err
	}
	return inst.Hash(ctx, password, salt, secret)
}

// Verify is [Instance.Verify] on the current instance.
func (s *Supervisor) Verify(ctx context.Context, digest string, password, secret []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.instance(ctx)
	if err != nil {
		return false, err
	}
	return inst.Verify(ctx, digest, password, secret)
}

// Close closes the current instance. The Runtime stays open.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.inst == nil {
		return nil
	}
	err := s.inst.Close(ctx)
	s.inst = nil
	return err
}
