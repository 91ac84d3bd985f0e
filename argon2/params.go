package argon2

import (
	"fmt"
	"math"
)

// Algorithm selects the Argon2 variant. The numeric values are the type
// identifiers y hashed into H0.
type Algorithm uint32

const (
	// Argon2d uses data-dependent memory access. Fastest, but not suitable
	// where side channels are a concern.
	Argon2d Algorithm = 0
	// Argon2i uses data-independent memory access.
	Argon2i Algorithm = 1
	// Argon2id runs the first half of the first pass like Argon2i and the
	// rest like Argon2d. Recommended for password hashing.
	Argon2id Algorithm = 2
)

// String returns the PHC identifier of the algorithm ("argon2id", ...).
func (a Algorithm) String() string {
	switch a {
	case Argon2d:
		return "argon2d"
	case Argon2i:
		return "argon2i"
	case Argon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("argon2(%d)", uint32(a))
	}
}

// ParseAlgorithm maps a PHC identifier to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "argon2d":
		return Argon2d, nil
	case "argon2i":
		return Argon2i, nil
	case "argon2id":
		return Argon2id, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, name)
	}
}

// Version is the Argon2 algorithm version.
type Version uint32

const (
	// V0x10 is version 16, the original submission.
	V0x10 Version = 0x10
	// V0x13 is version 19, the current version described in RFC 9106.
	V0x13 Version = 0x13

	// DefaultVersion is used when a digest does not name a version.
	DefaultVersion = V0x13
)

// ParseVersion validates a numeric version.
func ParseVersion(v uint32) (Version, error) {
	switch Version(v) {
	case V0x10, V0x13:
		return Version(v), nil
	default:
		return 0, fmt.Errorf("%w: 0x%x", ErrInvalidVersion, v)
	}
}

// Parameter bounds and defaults.
const (
	// MinMCost is the minimum memory cost in KiB (two blocks per sync point).
	MinMCost uint32 = 2 * syncPoints
	// MaxMCost is the maximum memory cost in KiB.
	MaxMCost uint32 = math.MaxUint32
	// MaxMemoryKiB is the largest block count [Context.HashInto] allocates:
	// 4 GiB, or 1 GiB where int is 32 bits.
	MaxMemoryKiB uint32 = min(1<<22, math.MaxInt>>11)
	// DefaultMCost is 19 MiB, the OWASP minimum for Argon2id.
	DefaultMCost uint32 = 19 * 1024

	// MinTCost is the minimum number of passes.
	MinTCost uint32 = 1
	// MaxTCost is the maximum number of passes.
	MaxTCost uint32 = math.MaxUint32
	// DefaultTCost is the default number of passes.
	DefaultTCost uint32 = 2

	// MinPCost is the minimum degree of parallelism.
	MinPCost uint32 = 1
	// MaxPCost is the maximum degree of parallelism (2^24 - 1).
	MaxPCost uint32 = 0xFFFFFF
	// DefaultPCost is the default degree of parallelism.
	DefaultPCost uint32 = 1

	// MinOutputLen is the minimum tag length in bytes.
	MinOutputLen = 4
	// DefaultOutputLen is the default tag length in bytes.
	DefaultOutputLen = 32

	// MinSaltLen is the minimum salt length in bytes.
	MinSaltLen = 8
	// RecommendedSaltLen is the salt length recommended by RFC 9106.
	RecommendedSaltLen = 16

	// MaxSecretLen is the maximum length of the secret key K.
	MaxSecretLen = math.MaxUint32
)

// Params holds the cost parameters of one Argon2 computation.
//
// The zero value is not valid; use [NewParams], [DefaultParams] or
// [ParamsBuilder].
type Params struct {
	mCost     uint32
	tCost     uint32
	pCost     uint32
	outputLen int
}

// DefaultParams returns the library defaults (m=19456, t=2, p=1, 32 bytes).
func DefaultParams() Params {
	return Params{
		mCost:     DefaultMCost,
		tCost:     DefaultTCost,
		pCost:     DefaultPCost,
		outputLen: DefaultOutputLen,
	}
}

// NewParams validates and returns a parameter set.
func NewParams(mCost, tCost, pCost uint32, outputLen int) (Params, error) {
	if pCost < MinPCost {
		return Params{}, fmt.Errorf("%w: parallelism must be >= %d, got %d", ErrInvalidParams, MinPCost, pCost)
	}
	if pCost > MaxPCost {
		return Params{}, fmt.Errorf("%w: parallelism must be <= %d, got %d", ErrInvalidParams, MaxPCost, pCost)
	}
	if mCost < MinMCost {
		return Params{}, fmt.Errorf("%w: memory cost must be >= %d KiB, got %d", ErrInvalidParams, MinMCost, mCost)
	}
	if uint64(mCost) < 8*uint64(pCost) {
		return Params{}, fmt.Errorf("%w: memory cost (%d KiB) must be >= 8*parallelism (%d KiB)",
			ErrInvalidParams, mCost, 8*uint64(pCost))
	}
	if tCost < MinTCost {
		return Params{}, fmt.Errorf("%w: time cost must be >= %d, got %d", ErrInvalidParams, MinTCost, tCost)
	}
	if outputLen < MinOutputLen || uint64(outputLen) > math.MaxUint32 {
		return Params{}, fmt.Errorf("%w: output length must be >= %d, got %d", ErrInvalidParams, MinOutputLen, outputLen)
	}
	return Params{mCost: mCost, tCost: tCost, pCost: pCost, outputLen: outputLen}, nil
}

// MCost returns the memory cost in KiB.
func (p Params) MCost() uint32 { return p.mCost }

// TCost returns the number of passes.
func (p Params) TCost() uint32 { return p.tCost }

// PCost returns the degree of parallelism.
func (p Params) PCost() uint32 { return p.pCost }

// OutputLen returns the tag length in bytes.
func (p Params) OutputLen() int { return p.outputLen }

// BlockCount returns the number of 1 KiB blocks actually allocated: the
// memory cost rounded down to a multiple of 4*p.
func (p Params) BlockCount() uint32 {
	q := syncPoints * p.pCost
	return p.mCost / q * q
}

// ParamsBuilder assembles a [Params] value field by field, starting from the
// defaults.
//
//	params, err := argon2.NewParamsBuilder().MCost(65536).TCost(3).Build()
type ParamsBuilder struct {
	p Params
}

// NewParamsBuilder returns a builder seeded with [DefaultParams].
func NewParamsBuilder() *ParamsBuilder {
	return &ParamsBuilder{p: DefaultParams()}
}

// MCost sets the memory cost in KiB.
func (b *ParamsBuilder) MCost(m uint32) *ParamsBuilder { b.p.mCost = m; return b }

// TCost sets the number of passes.
func (b *ParamsBuilder) TCost(t uint32) *ParamsBuilder { b.p.tCost = t; return b }

// PCost sets the degree of parallelism.
func (b *ParamsBuilder) PCost(p uint32) *ParamsBuilder { b.p.pCost = p; return b }

// OutputLen sets the tag length in bytes.
func (b *ParamsBuilder) OutputLen(n int) *ParamsBuilder { b.p.outputLen = n; return b }

// Build validates the accumulated values.
func (b *ParamsBuilder) Build() (Params, error) {
	return NewParams(b.p.mCost, b.p.tCost, b.p.pCost, b.p.outputLen)
}
