package hashing

import (
	"fmt"
	"strings"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
)

// DriverName identifies an Argon2 variant by its PHC identifier.
// Using a named string type prevents accidental confusion with plain strings.
type DriverName string

const (
	// DriverArgon2i selects Argon2i.
	DriverArgon2i DriverName = "argon2i"
	// DriverArgon2d selects Argon2d.
	DriverArgon2d DriverName = "argon2d"
	// DriverArgon2id selects Argon2id (recommended for new systems).
	DriverArgon2id DriverName = "argon2id"
)

// Algorithm maps the driver to its Argon2 variant.
func (d DriverName) Algorithm() (argon2.Algorithm, error) {
	alg, err := argon2.ParseAlgorithm(string(d))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAlgorithm, err)
	}
	return alg, nil
}

// Hasher is the interface satisfied by password-hashing drivers.
//
// All implementations must be safe for concurrent use by multiple goroutines.
type Hasher interface {
	// Make hashes password with the given salt and returns the encoded
	// digest string.
	Make(password []byte, salt Salt) (string, error)

	// Check verifies that password matches the previously encoded digest.
	// Returns (true, nil) on match, (false, nil) on mismatch, or
	// (false, err) if the digest is structurally invalid.
	//
	// Comparison is performed in constant time.
	Check(password []byte, hash string) (bool, error)

	// NeedsRehash returns true when the digest was produced with parameters
	// that differ from the hasher's current configuration.
	NeedsRehash(hash string) (bool, error)

	// Info extracts metadata from an encoded digest without verifying it.
	Info(hash string) (HashInfo, error)

	// Driver returns the DriverName implemented by this hasher.
	Driver() DriverName
}

// HashInfo carries metadata parsed from an encoded digest.
type HashInfo struct {
	// Driver is the variant that produced the digest.
	Driver DriverName

	// Params holds the parameters extracted from the digest:
	//   "version" → int    (Argon2 version number, 16 or 19)
	//   "memory"  → uint32 (KiB)
	//   "time"    → uint32 (iterations)
	//   "threads" → uint32 (degree of parallelism)
	//   "key_len" → uint32 (output length in bytes)
	Params map[string]any
}

// DetectDriver inspects a digest string and returns the [DriverName] that
// produced it. It is a best-effort check of the prefix and does not parse
// the rest of the digest.
//
// The second return value is false when the prefix is not recognised.
func DetectDriver(hash string) (DriverName, bool) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return DriverArgon2id, true
	case strings.HasPrefix(hash, "$argon2i$"):
		return DriverArgon2i, true
	case strings.HasPrefix(hash, "$argon2d$"):
		return DriverArgon2d, true
	default:
		return "", false
	}
}
