package hashing

import (
	"fmt"
	"strconv"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// Embedded parameters
// ──────────────────────────────────────────────────────────────────────────────

// digestParams holds the policy and extra inputs decoded from a digest.
type digestParams struct {
	cfg  Config
	data []byte // associated data, from the data= parameter
}

// paramsFromHash interprets an Argon2 digest's algorithm, version and
// parameter segment. Absent costs fall back to the library defaults and an
// absent version to fallbackVersion.
func paramsFromHash(ph *PasswordHash, fallbackVersion uint32) (*digestParams, error) {
	driver := DriverName(ph.Algorithm)
	if _, err := driver.Algorithm(); err != nil {
		return nil, err
	}

	version := ph.Version
	if version == 0 {
		version = fallbackVersion
	}
	if _, err := argon2.ParseVersion(version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}

	dp := &digestParams{cfg: Config{
		Driver:  driver,
		Version: version,
		Memory:  argon2.DefaultMCost,
		Time:    argon2.DefaultTCost,
		Threads: argon2.DefaultPCost,
	}}
	for _, p := range ph.Params {
		switch p.Name {
		case "m", "t", "p":
			v, err := strconv.ParseUint(p.Value, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: non-numeric %s=%q", ErrInvalidHash, p.Name, p.Value)
			}
			switch p.Name {
			case "m":
				dp.cfg.Memory = uint32(v)
			case "t":
				dp.cfg.Time = uint32(v)
			case "p":
				dp.cfg.Threads = uint32(v)
			}
		case "keyid":
			// Identifies the secret; not an input to the computation.
		case "data":
			data, err := b64.DecodeString(p.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid data base64: %v", ErrInvalidHash, err)
			}
			dp.data = data
		default:
			return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidHash, p.Name)
		}
	}

	if _, err := dp.cfg.params(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	return dp, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Argon2Hasher
// ──────────────────────────────────────────────────────────────────────────────

// Argon2Hasher hashes passwords with one Argon2 policy and an optional
// secret key.
//
// The secret is mixed into every computation, so a digest produced with a
// secret only verifies with the same secret.
//
// # Thread safety
//
// Argon2Hasher is immutable after construction and safe for concurrent use.
type Argon2Hasher struct {
	cfg    Config
	secret []byte
	ctx    *argon2.Context
}

// NewArgon2Hasher validates cfg and returns a hasher keyed with secret.
// A nil secret selects the keyless hasher. The secret is copied.
func NewArgon2Hasher(cfg Config, secret []byte) (*Argon2Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, err := cfg.context(secret)
	if err != nil {
		return nil, err
	}
	h := &Argon2Hasher{cfg: cfg, ctx: ctx}
	if secret != nil {
		h.secret = append([]byte{}, secret...)
	}
	return h, nil
}

// Driver returns the configured variant.
func (h *Argon2Hasher) Driver() DriverName { return h.cfg.Driver }

// Config returns the policy the hasher was built with.
func (h *Argon2Hasher) Config() Config { return h.cfg }

// Keyed reports whether the hasher carries a secret key.
func (h *Argon2Hasher) Keyed() bool { return h.secret != nil }

// Make hashes password with salt and returns the PHC digest string.
func (h *Argon2Hasher) Make(password []byte, salt Salt) (string, error) {
	ph, err := h.Generate(password, salt)
	if err != nil {
		return "", err
	}
	return ph.String(), nil
}

// Generate hashes password with salt and returns the parsed digest.
func (h *Argon2Hasher) Generate(password []byte, salt Salt) (*PasswordHash, error) {
	raw, err := salt.Decode()
	if err != nil {
		return nil, err
	}
	out, err := h.ctx.Hash(password, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHashFailed, err)
	}
	return &PasswordHash{
		Algorithm: string(h.cfg.Driver),
		Version:   h.cfg.Version,
		Params:    h.cfg.phcParams(),
		Salt:      salt,
		Hash:      out,
	}, nil
}

// Check verifies that password matches the digest.
// The parameters (memory, time, threads, version) are read from the digest
// itself, so verification works even when the hasher's policy differs.
func (h *Argon2Hasher) Check(password []byte, hash string) (bool, error) {
	ph, err := ParsePasswordHash(hash)
	if err != nil {
		return false, err
	}
	return h.CheckHash(password, ph)
}

// CheckHash is [Argon2Hasher.Check] on an already parsed digest.
//
// A digest without a hash segment, or whose salt does not decode to at least
// [argon2.MinSaltLen] bytes, cannot match and yields (false, nil).
func (h *Argon2Hasher) CheckHash(password []byte, ph *PasswordHash) (bool, error) {
	if DriverName(ph.Algorithm) != h.cfg.Driver {
		if _, err := DriverName(ph.Algorithm).Algorithm(); err != nil {
			return false, err
		}
		return false, fmt.Errorf("%w: hash is %s, not %s", ErrAlgorithmMismatch, ph.Algorithm, h.cfg.Driver)
	}
	dp, err := paramsFromHash(ph, h.cfg.Version)
	if err != nil {
		return false, err
	}
	if ph.Hash == nil {
		return false, nil
	}
	salt, err := ph.Salt.Decode()
	if err != nil {
		return false, nil
	}

	if err := checkMemory(dp.cfg.Memory, 0); err != nil {
		return false, err
	}
	ctx, err := dp.cfg.context(h.secret)
	if err != nil {
		return false, err
	}
	return ctx.Verify(password, salt, dp.data, ph.Hash), nil
}

// NeedsRehash returns true if any parameter stored in the digest differs
// from the hasher's policy, or its output length differs from the default.
func (h *Argon2Hasher) NeedsRehash(hash string) (bool, error) {
	ph, err := ParsePasswordHash(hash)
	if err != nil {
		return false, err
	}
	if DriverName(ph.Algorithm) != h.cfg.Driver {
		return false, fmt.Errorf("%w: hash is %s, not %s", ErrAlgorithmMismatch, ph.Algorithm, h.cfg.Driver)
	}
	dp, err := paramsFromHash(ph, uint32(argon2.DefaultVersion))
	if err != nil {
		return false, err
	}
	return dp.cfg != h.cfg || len(ph.Hash) != argon2.DefaultOutputLen, nil
}

// Info parses the digest and returns the encoded parameters.
func (h *Argon2Hasher) Info(hash string) (HashInfo, error) {
	ph, err := ParsePasswordHash(hash)
	if err != nil {
		return HashInfo{}, err
	}
	if DriverName(ph.Algorithm) != h.cfg.Driver {
		return HashInfo{}, fmt.Errorf("%w: hash is %s, not %s", ErrAlgorithmMismatch, ph.Algorithm, h.cfg.Driver)
	}
	return infoFromHash(ph)
}

func infoFromHash(ph *PasswordHash) (HashInfo, error) {
	dp, err := paramsFromHash(ph, uint32(argon2.DefaultVersion))
	if err != nil {
		return HashInfo{}, err
	}
	return HashInfo{
		Driver: dp.cfg.Driver,
		Params: map[string]any{
			"version": int(dp.cfg.Version),
			"memory":  dp.cfg.Memory,
			"time":    dp.cfg.Time,
			"threads": dp.cfg.Threads,
			"key_len": uint32(len(ph.Hash)),
		},
	}, nil
}
