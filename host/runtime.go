package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

// Export names of the module.
const (
	exportAlloc       = "alloc"
	exportDealloc     = "dealloc"
	exportSetupParams = "setup_params"
	exportHash        = "hash"
	exportVerify      = "verify"
)

var requiredExports = []string{exportAlloc, exportDealloc, exportSetupParams, exportHash, exportVerify}

// Option configures a [Runtime].
type Option func(*options)

type options struct {
	log              *zap.Logger
	metrics          *Metrics
	memoryLimitPages uint32
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics records calls, traps and reloads in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMemoryLimitPages caps each instance's linear memory at n 64 KiB pages.
// A call that would grow past it traps.
func WithMemoryLimitPages(n uint32) Option {
	return func(o *options) { o.memoryLimitPages = n }
}

// Runtime holds a wazero runtime with the module compiled and its imports
// instantiated. It is safe for concurrent use; the instances it creates
// are not.
type Runtime struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	log      *zap.Logger
	metrics  *Metrics

	mu        sync.Mutex
	instances map[string]*Instance
}

// NewRuntime compiles wasm and instantiates WASI and the env module.
// Cancelling the context of a call aborts it and poisons the instance.
func NewRuntime(ctx context.Context, wasm []byte, opts ...Option) (*Runtime, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if o.memoryLimitPages > 0 {
		cfg = cfg.WithMemoryLimitPages(o.memoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	rt := &Runtime{
		runtime:   r,
		log:       o.log,
		metrics:   o.metrics,
		instances: make(map[string]*Instance),
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("host: instantiate wasi: %w", err)
	}

	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().WithFunc(rt.report).Export("panic").
		Instantiate(ctx)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("host: instantiate env module: %w", err)
	}

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("host: compile module: %w", err)
	}
	exports := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exports[name]; !ok {
			r.Close(ctx)
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
		}
	}
	rt.compiled = compiled
	return rt, nil
}

// report is the env.panic import. It routes the message to the instance
// named by the calling module.
func (rt *Runtime) report(_ context.Context, m api.Module, ptr, n uint32) {
	rt.mu.Lock()
	in := rt.instances[m.Name()]
	rt.mu.Unlock()

	msg, ok := m.Memory().Read(ptr, n)
	if !ok {
		msg = []byte("failure message out of bounds")
	}
	if in == nil {
		rt.log.Warn("failure report from unknown module",
			zap.String("module", m.Name()),
			zap.ByteString("message", msg),
		)
		return
	}
	in.setFailure(string(msg))
}

// Instantiate creates a new instance running the module's initialiser.
func (rt *Runtime) Instantiate(ctx context.Context) (*Instance, error) {
	id, err := newInstanceID(time.Now())
	if err != nil {
		return nil, fmt.Errorf("host: instance id: %w", err)
	}
	in := &Instance{id: id, rt: rt}

	rt.mu.Lock()
	rt.instances[id] = in
	rt.mu.Unlock()
	rt.metrics.instanceDelta(1)

	mod, err := rt.runtime.InstantiateModule(ctx, rt.compiled, wazero.NewModuleConfig().
		WithName(id).
		WithStartFunctions("_initialize"))
	if err != nil {
		rt.forget(id)
		return nil, fmt.Errorf("host: instantiate module: %w", err)
	}
	in.bind(mod)

	rt.log.Debug("instance created", zap.String("instance", id))
	return in, nil
}

// forget unregisters id. The instances gauge follows the registry, so an
// id already dropped by Close is not counted twice.
func (rt *Runtime) forget(id string) {
	rt.mu.Lock()
	_, ok := rt.instances[id]
	delete(rt.instances, id)
	rt.mu.Unlock()

	if ok {
		rt.metrics.instanceDelta(-1)
	}
}

// Close closes every instance and the runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	rt.mu.Lock()
	n := len(rt.instances)
	rt.instances = make(map[string]*Instance)
	rt.mu.Unlock()

	rt.metrics.instanceDelta(-float64(n))
	return rt.runtime.Close(ctx)
}
