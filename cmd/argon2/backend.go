package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hasbyte1/go-argon2-wasm/hashing"
	"github.com/hasbyte1/go-argon2-wasm/host"
	"github.com/hasbyte1/go-argon2-wasm/internal/config"
)

// wasmHeadroomPages is linear memory allowed on top of the memory limit for
// the module's own runtime and arena.
const wasmHeadroomPages = 256

// backend runs the operations either natively or in the wasm module.
type backend interface {
	Configure(ctx context.Context, cfg hashing.Config) error
	Hash(ctx context.Context, password, salt, secret []byte) (string, error)
	Verify(ctx context.Context, digest string, password, secret []byte) (bool, error)
	Close(ctx context.Context) error
}

func openBackend(ctx context.Context, cfg config.Config, wasmPath string, log *zap.Logger) (backend, error) {
	if wasmPath == "" {
		log.Debug("using native backend")
		return &nativeBackend{store: hashing.NewStore(hashing.WithMemoryLimit(cfg.MaxMemoryKiB))}, nil
	}

	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	opts := []host.Option{host.WithLogger(log)}
	if cfg.MaxMemoryKiB != 0 {
		opts = append(opts, host.WithMemoryLimitPages(cfg.MaxMemoryKiB/64+wasmHeadroomPages))
	}
	rt, err := host.NewRuntime(ctx, wasm, opts...)
	if err != nil {
		return nil, err
	}
	sup, err := host.NewSupervisor(ctx, rt)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	log.Debug("using wasm backend", zap.String("module", wasmPath))
	return &wasmBackend{rt: rt, sup: sup}, nil
}

type nativeBackend struct {
	store *hashing.Store
}

func (b *nativeBackend) Configure(_ context.Context, cfg hashing.Config) error {
	return b.store.Configure(cfg)
}

func (b *nativeBackend) Hash(_ context.Context, password, salt, secret []byte) (string, error) {
	return b.store.Hash(password, salt, secret)
}

func (b *nativeBackend) Verify(_ context.Context, digest string, password, secret []byte) (bool, error) {
	return b.store.Verify(digest, password, secret)
}

func (b *nativeBackend) Close(context.Context) error { return nil }

type wasmBackend struct {
	rt  *host.Runtime
	sup *host.Supervisor
}

func (b *wasmBackend) Configure(ctx context.Context, cfg hashing.Config) error {
	return b.sup.Configure(ctx, cfg)
}

func (b *wasmBackend) Hash(ctx context.Context, password, salt, secret []byte) (string, error) {
	return b.sup.Hash(ctx, password, salt, secret)
}

func (b *wasmBackend) Verify(ctx context.Context, digest string, password, secret []byte) (bool, error) {
	return b.sup.Verify(ctx, digest, password, secret)
}

func (b *wasmBackend) Close(ctx context.Context) error {
	_ = b.sup.Close(ctx)
	return b.rt.Close(ctx)
}
