package hashing

import "errors"

// Sentinel errors returned by hashing operations.
//
// Use [errors.Is] for comparisons:
//
//	ok, err := hashing.Verify(digest, password, nil)
//	if errors.Is(err, hashing.ErrInvalidHash) {
//	    // digest string is malformed
//	}
//
// Errors raised by the argon2 package are wrapped alongside these, so
// errors.Is also matches the underlying argon2 sentinel.
var (
	// ErrInvalidHash is returned when a digest string cannot be parsed because
	// it has an unrecognised format, missing fields, or invalid encoding.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised hash string")

	// ErrInvalidSalt is returned when a salt does not satisfy the length or
	// character-set rules of the digest format.
	ErrInvalidSalt = errors.New("hashing: invalid salt")

	// ErrInvalidOption is returned when a configuration is built with a cost
	// value that the Argon2 parameter builder rejects.
	ErrInvalidOption = errors.New("hashing: invalid option value")

	// ErrInvalidAlgorithm is returned for an algorithm other than argon2i,
	// argon2d or argon2id.
	ErrInvalidAlgorithm = errors.New("hashing: unsupported algorithm")

	// ErrInvalidVersion is returned for a version other than 0x10 or 0x13.
	ErrInvalidVersion = errors.New("hashing: unsupported version")

	// ErrInvalidInput is returned for an input that is rejected before any
	// hashing takes place, such as an empty password.
	ErrInvalidInput = errors.New("hashing: invalid input")

	// ErrAlgorithmMismatch is returned by a [Hasher]'s Check or NeedsRehash
	// method when the digest was produced by a different variant than the
	// one the hasher is configured for.
	ErrAlgorithmMismatch = errors.New("hashing: hash was produced by a different algorithm")

	// ErrMemoryLimit is returned when a memory cost exceeds the limit of a
	// [Store].
	ErrMemoryLimit = errors.New("hashing: memory cost exceeds limit")

	// ErrHashFailed is returned when the Argon2 computation itself fails.
	ErrHashFailed = errors.New("hashing: hash computation failed")
)
