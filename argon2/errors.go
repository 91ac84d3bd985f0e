package argon2

import "errors"

// Sentinel errors returned by this package. Use [errors.Is] for comparisons.
var (
	// ErrInvalidParams is returned when a cost or length parameter falls
	// outside the range accepted by the algorithm.
	ErrInvalidParams = errors.New("argon2: invalid parameters")

	// ErrInvalidAlgorithm is returned for an unknown algorithm identifier.
	ErrInvalidAlgorithm = errors.New("argon2: invalid algorithm")

	// ErrInvalidVersion is returned for a version other than 0x10 or 0x13.
	ErrInvalidVersion = errors.New("argon2: invalid version")

	// ErrMemory is returned when the memory cost exceeds [MaxMemoryKiB].
	ErrMemory = errors.New("argon2: memory cost exceeds addressable memory")

	// ErrSaltTooShort is returned when the salt is shorter than [MinSaltLen].
	ErrSaltTooShort = errors.New("argon2: salt too short")

	// ErrSecretTooLong is returned when the secret exceeds [MaxSecretLen].
	ErrSecretTooLong = errors.New("argon2: secret too long")
)
