package hashing

import (
	"fmt"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
)

// Config is one complete Argon2 cost policy: variant, version, and the
// memory, time and parallelism costs. The output length is not part of the
// policy; digests always carry [argon2.DefaultOutputLen] bytes.
//
// All fields are encoded into every digest produced under the policy, so
// changing the policy only affects new digests.
type Config struct {
	// Driver is the Argon2 variant.
	Driver DriverName

	// Version is the Argon2 version, 0x10 or 0x13.
	Version uint32

	// Memory is the memory cost in KiB.
	// Minimum: 8 * Threads. Default: [argon2.DefaultMCost] (19 MiB).
	Memory uint32

	// Time is the number of passes over memory.
	// Minimum: 1. Default: [argon2.DefaultTCost] (2).
	Time uint32

	// Threads is the degree of parallelism.
	// Range: 1..2^24-1. Default: [argon2.DefaultPCost] (1).
	Threads uint32
}

// DefaultConfig returns Argon2id, version 0x13, with the library default
// costs (m=19456, t=2, p=1), which meet OWASP's Argon2id minimum.
func DefaultConfig() Config {
	return Config{
		Driver:  DriverArgon2id,
		Version: uint32(argon2.V0x13),
		Memory:  argon2.DefaultMCost,
		Time:    argon2.DefaultTCost,
		Threads: argon2.DefaultPCost,
	}
}

// NewConfig validates its arguments and returns the resulting Config.
func NewConfig(driver DriverName, version, memory, time, threads uint32) (Config, error) {
	cfg := Config{
		Driver:  driver,
		Version: version,
		Memory:  memory,
		Time:    time,
		Threads: threads,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the variant, the version and the costs.
func (c Config) Validate() error {
	if _, err := c.Driver.Algorithm(); err != nil {
		return err
	}
	if _, err := argon2.ParseVersion(c.Version); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	if _, err := c.params(); err != nil {
		return err
	}
	return nil
}

// params builds the Argon2 parameters. Only memory, time and parallelism
// are forwarded; the output length stays at the library default.
func (c Config) params() (argon2.Params, error) {
	p, err := argon2.NewParamsBuilder().
		MCost(c.Memory).
		TCost(c.Time).
		PCost(c.Threads).
		Build()
	if err != nil {
		return argon2.Params{}, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	return p, nil
}

// context builds an Argon2 context for the policy. A nil secret selects the
// keyless variant.
func (c Config) context(secret []byte) (*argon2.Context, error) {
	alg, err := c.Driver.Algorithm()
	if err != nil {
		return nil, err
	}
	version, err := argon2.ParseVersion(c.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}
	params, err := c.params()
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return argon2.New(alg, version, params), nil
	}
	ctx, err := argon2.NewWithSecret(secret, alg, version, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return ctx, nil
}

// phcParams returns the parameter segment for digests produced under c.
func (c Config) phcParams() []Param {
	return []Param{
		{Name: "m", Value: fmt.Sprint(c.Memory)},
		{Name: "t", Value: fmt.Sprint(c.Time)},
		{Name: "p", Value: fmt.Sprint(c.Threads)},
	}
}
