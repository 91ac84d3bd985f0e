// Package host loads the Argon2 wasm module with wazero and calls it through
// its raw-memory interface.
//
// A [Runtime] compiles the module once and provides the env.panic import.
// Each [Instance] is one instantiation with its own linear memory and
// parameter store, named by a ULID so that failure reports are routed back
// to the instance that raised them. An operation that returns a non-zero
// status yields a [*Failure]; a trap poisons the instance, and a
// [Supervisor] replaces poisoned instances and replays the last
// configuration.
//
//	rt, err := host.NewRuntime(ctx, wasm, host.WithLogger(log))
//	if err != nil { ... }
//	defer rt.Close(ctx)
//
//	sup, err := host.NewSupervisor(ctx, rt)
//	digest, err := sup.Hash(ctx, []byte("correct horse"), salt, nil)
//
// Rebuild the module used by the tests with go generate.
package host

//go:generate sh -c "GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o testdata/argon2.wasm ../cmd/argon2wasm"
