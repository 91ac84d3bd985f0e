package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/hasbyte1/go-argon2-wasm/abi"
	"github.com/hasbyte1/go-argon2-wasm/hashing"
)

// maxDigestLen bounds the scan for a digest's NUL terminator.
const maxDigestLen = 1024

var _ abi.Memory = (api.Memory)(nil)

// Instance is one instantiation of the module. Calls are serialised by an
// internal mutex.
type Instance struct {
	id string
	rt *Runtime

	mod api.Module

	alloc, dealloc, setupParams, hash, verify api.Function

	mu       sync.Mutex
	failure  string
	poisoned bool
}

func (in *Instance) bind(mod api.Module) {
	in.mod = mod
	in.alloc = mod.ExportedFunction(exportAlloc)
	in.dealloc = mod.ExportedFunction(exportDealloc)
	in.setupParams = mod.ExportedFunction(exportSetupParams)
	in.hash = mod.ExportedFunction(exportHash)
	in.verify = mod.ExportedFunction(exportVerify)
}

// ID returns the instance's module name.
func (in *Instance) ID() string { return in.id }

// Poisoned reports whether the instance trapped.
func (in *Instance) Poisoned() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.poisoned
}

// setFailure is called from the env.panic import during a call, with mu
// already held by the caller's goroutine.
func (in *Instance) setFailure(msg string) { in.failure = msg }

// Configure replaces the instance's parameter policy.
func (in *Instance) Configure(ctx context.Context, cfg hashing.Config) error {
	tag, err := abi.TagOf(cfg.Driver)
	if err != nil {
		return err
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.call(ctx, exportSetupParams, in.setupParams,
		uint64(tag), uint64(cfg.Version), uint64(cfg.Memory), uint64(cfg.Time), uint64(cfg.Threads))
}

// Hash hashes password with the instance's policy. A nil secret selects
// the keyless hasher.
func (in *Instance) Hash(ctx context.Context, password, salt, secret []byte) (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	var c callFrame
	defer c.release(ctx, in)

	pw, err := c.put(ctx, in, password)
	if err != nil {
		return "", err
	}
	s, err := c.put(ctx, in, salt)
	if err != nil {
		return "", err
	}
	sec, err := c.putOptional(ctx, in, secret)
	if err != nil {
		return "", err
	}
	out, err := c.slot(ctx, in)
	if err != nil {
		return "", err
	}

	err = in.call(ctx, exportHash, in.hash,
		uint64(pw.Ptr), uint64(pw.Len), uint64(s.Ptr), uint64(s.Len), uint64(sec.Ptr), uint64(sec.Len), uint64(out))
	if err != nil {
		return "", err
	}
	return in.takeDigest(ctx, out)
}

// Verify reports whether password matches digest.
func (in *Instance) Verify(ctx context.Context, digest string, password, secret []byte) (bool, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	var c callFrame
	defer c.release(ctx, in)

	d, err := c.put(ctx, in, []byte(digest))
	if err != nil {
		return false, err
	}
	pw, err := c.put(ctx, in, password)
	if err != nil {
		return false, err
	}
	sec, err := c.putOptional(ctx, in, secret)
	if err != nil {
		return false, err
	}
	out, err := c.slot(ctx, in)
	if err != nil {
		return false, err
	}

	err = in.call(ctx, exportVerify, in.verify,
		uint64(d.Ptr), uint64(d.Len), uint64(pw.Ptr), uint64(pw.Len), uint64(sec.Ptr), uint64(sec.Len), uint64(out))
	if err != nil {
		return false, err
	}
	v, ok := in.mod.Memory().ReadUint32Le(out)
	if !ok {
		return false, fmt.Errorf("host: verify: %w", abi.ErrOutOfBounds)
	}
	return v == 1, nil
}

// Close closes the module instance.
func (in *Instance) Close(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.rt.forget(in.id)
	return in.mod.Close(ctx)
}

// call invokes fn and converts its status. mu must be held.
func (in *Instance) call(ctx context.Context, op string, fn api.Function, params ...uint64) error {
	if in.poisoned {
		return ErrPoisoned
	}
	in.failure = ""

	start := time.Now()
	res, err := fn.Call(ctx, params...)
	dur := time.Since(start)
	if err != nil {
		in.poison(op, err)
		return fmt.Errorf("host: %s: %w: %w", op, ErrPoisoned, err)
	}

	st := abi.Status(uint32(res[0]))
	in.rt.metrics.observe(op, st, dur)
	if st != abi.OK {
		in.rt.log.Debug("module call failed",
			zap.String("instance", in.id),
			zap.String("op", op),
			zap.Stringer("status", st),
			zap.String("message", in.failure),
		)
		return &Failure{Op: op, Status: st, Message: in.failure}
	}
	return nil
}

func (in *Instance) poison(op string, err error) {
	in.poisoned = true
	in.rt.metrics.trap(op)
	in.rt.log.Warn("module trapped",
		zap.String("instance", in.id),
		zap.String("op", op),
		zap.Error(err),
	)
}

// allocate calls alloc. mu must be held.
func (in *Instance) allocate(ctx context.Context, size uint32) (uint32, error) {
	if in.poisoned {
		return 0, ErrPoisoned
	}
	in.failure = ""
	res, err := in.alloc.Call(ctx, uint64(size))
	if err != nil {
		in.poison(exportAlloc, err)
		return 0, fmt.Errorf("host: alloc: %w: %w", ErrPoisoned, err)
	}
	ptr := uint32(res[0])
	if ptr == 0 {
		in.rt.metrics.observe(exportAlloc, abi.ResourceExhausted, 0)
		return 0, &Failure{Op: exportAlloc, Status: abi.ResourceExhausted, Message: in.failure}
	}
	return ptr, nil
}

func (in *Instance) free(ctx context.Context, ptr, size uint32) {
	if in.poisoned || ptr == 0 {
		return
	}
	if _, err := in.dealloc.Call(ctx, uint64(ptr), uint64(size)); err != nil {
		in.poison(exportDealloc, err)
	}
}

// takeDigest reads the NUL-terminated digest whose address is stored at
// out, then releases it.
func (in *Instance) takeDigest(ctx context.Context, out uint32) (string, error) {
	mem := in.mod.Memory()
	ptr, ok := mem.ReadUint32Le(out)
	if !ok {
		return "", fmt.Errorf("host: hash: %w", abi.ErrOutOfBounds)
	}
	buf := make([]byte, 0, 128)
	for i := uint32(0); i < maxDigestLen; i++ {
		b, ok := mem.ReadByte(ptr + i)
		if !ok {
			return "", fmt.Errorf("host: hash: digest at %#x: %w", ptr, abi.ErrOutOfBounds)
		}
		if b == 0 {
			owned := abi.Owned{Ptr: ptr, Len: i + 1}
			in.free(ctx, owned.Ptr, owned.Len)
			return string(buf), nil
		}
		buf = append(buf, b)
	}
	return "", fmt.Errorf("host: hash: digest at %#x is not terminated", ptr)
}

// callFrame tracks the input buffers of one call so they are released
// afterwards.
type callFrame struct {
	blocks []abi.Borrowed
}

func (c *callFrame) put(ctx context.Context, in *Instance, data []byte) (abi.Borrowed, error) {
	ptr, err := in.allocate(ctx, uint32(len(data)))
	if err != nil {
		return abi.Borrowed{}, err
	}
	b := abi.Borrowed{Ptr: ptr, Len: uint32(len(data))}
	c.blocks = append(c.blocks, b)
	if !in.mod.Memory().Write(ptr, data) {
		return abi.Borrowed{}, fmt.Errorf("host: write input: %w", abi.ErrOutOfBounds)
	}
	return b, nil
}

// putOptional is put, except that nil yields the null buffer.
func (c *callFrame) putOptional(ctx context.Context, in *Instance, data []byte) (abi.Borrowed, error) {
	if data == nil {
		return abi.Borrowed{}, nil
	}
	return c.put(ctx, in, data)
}

func (c *callFrame) slot(ctx context.Context, in *Instance) (uint32, error) {
	b, err := c.put(ctx, in, make([]byte, 4))
	return b.Ptr, err
}

func (c *callFrame) release(ctx context.Context, in *Instance) {
	for i := len(c.blocks) - 1; i >= 0; i-- {
		in.free(ctx, c.blocks[i].Ptr, c.blocks[i].Len)
	}
}
