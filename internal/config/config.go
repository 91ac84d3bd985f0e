// Package config loads the runtime configuration of the argon2 command from
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
	"github.com/hasbyte1/go-argon2-wasm/hashing"
)

// Config is the single configuration surface of the command.
type Config struct {
	// Hashing is the cost policy new digests are produced with.
	Hashing hashing.Config

	// MaxMemoryKiB rejects hashing or verifying with a larger memory cost.
	// Zero means no limit.
	MaxMemoryKiB uint32

	// WasmPath, when set, runs every operation through the wasm module at
	// this path instead of the native library.
	WasmPath string
}

// DefaultConfig returns the library default policy, no memory limit and
// native execution.
func DefaultConfig() Config {
	return Config{Hashing: hashing.DefaultConfig()}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - ARGON2_ALGORITHM (argon2i, argon2d, argon2id)
// - ARGON2_VERSION (16, 19, 0x10 or 0x13)
// - ARGON2_M_COST
// - ARGON2_T_COST
// - ARGON2_P_COST
// - ARGON2_MAX_MEMORY_KIB
// - ARGON2_WASM
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("ARGON2_ALGORITHM"); ok {
		d := hashing.DriverName(strings.ToLower(strings.TrimSpace(v)))
		if _, err := d.Algorithm(); err != nil {
			return Config{}, fmt.Errorf("ARGON2_ALGORITHM: %w", err)
		}
		cfg.Hashing.Driver = d
	}

	if v, ok := os.LookupEnv("ARGON2_VERSION"); ok {
		u, err := ParseVersion(v)
		if err != nil {
			return Config{}, fmt.Errorf("ARGON2_VERSION: %w", err)
		}
		cfg.Hashing.Version = u
	}

	if v, ok := os.LookupEnv("ARGON2_M_COST"); ok {
		u, err := atou32(v, argon2.MinMCost, 4*1024*1024) // 8 KiB .. 4 GiB
		if err != nil {
			return Config{}, fmt.Errorf("ARGON2_M_COST: %w", err)
		}
		cfg.Hashing.Memory = u
	}

	if v, ok := os.LookupEnv("ARGON2_T_COST"); ok {
		u, err := atou32(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("ARGON2_T_COST: %w", err)
		}
		cfg.Hashing.Time = u
	}

	if v, ok := os.LookupEnv("ARGON2_P_COST"); ok {
		u, err := atou32(v, 1, 255)
		if err != nil {
			return Config{}, fmt.Errorf("ARGON2_P_COST: %w", err)
		}
		cfg.Hashing.Threads = u
	}

	if v, ok := os.LookupEnv("ARGON2_MAX_MEMORY_KIB"); ok {
		u, err := atou32(v, 0, 4*1024*1024)
		if err != nil {
			return Config{}, fmt.Errorf("ARGON2_MAX_MEMORY_KIB: %w", err)
		}
		cfg.MaxMemoryKiB = u
	}

	if v, ok := os.LookupEnv("ARGON2_WASM"); ok {
		cfg.WasmPath = strings.TrimSpace(v)
	}

	// Final sanity.
	if err := cfg.Hashing.Validate(); err != nil {
		return Config{}, fmt.Errorf("argon2 policy invalid: %w", err)
	}
	if cfg.MaxMemoryKiB != 0 && cfg.Hashing.Memory > cfg.MaxMemoryKiB {
		return Config{}, fmt.Errorf(
			"argon2 policy invalid: m_cost(%d) > max_memory_kib(%d)",
			cfg.Hashing.Memory,
			cfg.MaxMemoryKiB,
		)
	}

	return cfg, nil
}

// ParseVersion accepts a version in decimal or 0x-prefixed hex.
func ParseVersion(s string) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	if _, err := argon2.ParseVersion(uint32(u64)); err != nil {
		return 0, err
	}
	return uint32(u64), nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	s = strings.TrimSpace(s)
	u64, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}

	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}
