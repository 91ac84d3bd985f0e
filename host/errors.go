package host

import (
	"errors"
	"fmt"

	"github.com/hasbyte1/go-argon2-wasm/abi"
)

var (
	// ErrPoisoned is returned by every call on an instance that trapped.
	// The instance must be closed and replaced.
	ErrPoisoned = errors.New("host: instance poisoned")

	// ErrMissingExport is returned when the module lacks a required export.
	ErrMissingExport = errors.New("host: missing export")

	// ErrClosed is returned by a closed Supervisor.
	ErrClosed = errors.New("host: closed")
)

// Failure is a non-zero status returned by the module together with the
// message it reported.
type Failure struct {
	Op      string
	Status  abi.Status
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("host: %s: %s: %s", f.Op, f.Status, f.Message)
}

// Unwrap returns the sentinel of the status, so that
// errors.Is(err, abi.ErrInvalidParams) works on a Failure.
func (f *Failure) Unwrap() error { return f.Status.Err() }
