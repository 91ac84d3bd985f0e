// Package abi is the raw-memory call interface of the Argon2 module.
//
// The host and the module share one linear memory but not a memory-safety
// domain. Every exported operation takes (pointer, length) pairs, copies
// what it reads into Go slices, and works on those copies. Results travel
// back either as a scalar written at an output pointer or as an [Owned]
// buffer that the host must release with dealloc.
//
// Every operation returns a [Status]. A non-zero status is always preceded
// by exactly one call to the failure reporter with a diagnostic message;
// the message text is not stable and must not be parsed.
//
// The package has no dependency on the wasm runtime. The guest in
// cmd/argon2wasm wires a [Module] to its linear memory; tests drive it over
// a [SliceMemory].
package abi
