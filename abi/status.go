package abi

import (
	"errors"
	"fmt"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
	"github.com/hasbyte1/go-argon2-wasm/hashing"
	"github.com/hasbyte1/go-argon2-wasm/internal/rawmem"
)

// Status is the result code of an exported operation.
type Status uint32

const (
	// OK means the operation completed and wrote its result.
	OK Status = iota
	// InvalidInput means a buffer was out of bounds or its contents were
	// rejected: an empty password, a bad salt, a malformed digest.
	InvalidInput
	// InvalidParams means an algorithm tag, version or cost was rejected.
	InvalidParams
	// ResourceExhausted means the allocator or the memory limit refused the
	// request.
	ResourceExhausted
	// AlgorithmFailure means the Argon2 computation failed.
	AlgorithmFailure
)

// Sentinel errors corresponding to the non-OK statuses.
var (
	ErrInvalidInput      = errors.New("abi: invalid input")
	ErrInvalidParams     = errors.New("abi: invalid parameters")
	ErrResourceExhausted = errors.New("abi: resource exhausted")
	ErrAlgorithmFailure  = errors.New("abi: algorithm failure")

	// ErrOutOfBounds is returned when a pointer and length do not lie inside
	// memory. It reports as [InvalidInput].
	ErrOutOfBounds = errors.New("abi: buffer out of bounds")
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case InvalidInput:
		return "invalid_input"
	case InvalidParams:
		return "invalid_params"
	case ResourceExhausted:
		return "resource_exhausted"
	case AlgorithmFailure:
		return "algorithm_failure"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}

// Err returns the sentinel for s, or nil for [OK].
func (s Status) Err() error {
	switch s {
	case OK:
		return nil
	case InvalidInput:
		return ErrInvalidInput
	case InvalidParams:
		return ErrInvalidParams
	case ResourceExhausted:
		return ErrResourceExhausted
	case AlgorithmFailure:
		return ErrAlgorithmFailure
	default:
		return fmt.Errorf("abi: unknown status %d", uint32(s))
	}
}

// StatusOf classifies err. A nil error is [OK]; anything unrecognised is
// [AlgorithmFailure].
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, rawmem.ErrExhausted),
		errors.Is(err, hashing.ErrMemoryLimit),
		errors.Is(err, argon2.ErrMemory),
		errors.Is(err, ErrResourceExhausted):
		return ResourceExhausted
	case errors.Is(err, ErrOutOfBounds),
		errors.Is(err, hashing.ErrInvalidHash),
		errors.Is(err, hashing.ErrInvalidSalt),
		errors.Is(err, hashing.ErrInvalidInput),
		errors.Is(err, ErrInvalidInput):
		return InvalidInput
	case errors.Is(err, hashing.ErrInvalidAlgorithm),
		errors.Is(err, hashing.ErrInvalidVersion),
		errors.Is(err, hashing.ErrInvalidOption),
		errors.Is(err, ErrInvalidParams):
		return InvalidParams
	default:
		return AlgorithmFailure
	}
}
