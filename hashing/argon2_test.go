package hashing_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
	"github.com/hasbyte1/go-argon2-wasm/hashing"
)

// fastConfig returns minimal Argon2 parameters for unit tests.
// These are intentionally weak. Do NOT use in production.
func fastConfig(driver hashing.DriverName) hashing.Config {
	return hashing.Config{
		Driver:  driver,
		Version: uint32(argon2.V0x13),
		Memory:  8 * 2, // 8 × Threads minimum
		Time:    1,
		Threads: 2,
	}
}

func testSalt() []byte { return []byte("0123456789abcdef") }

func newTestHasher(t *testing.T, driver hashing.DriverName, secret []byte) *hashing.Argon2Hasher {
	t.Helper()
	h, err := hashing.NewArgon2Hasher(fastConfig(driver), secret)
	require.NoError(t, err, "NewArgon2Hasher")
	return h
}

func mustSalt(t *testing.T, raw []byte) hashing.Salt {
	t.Helper()
	s, err := hashing.EncodeSalt(raw)
	require.NoError(t, err)
	return s
}

var allDrivers = []hashing.DriverName{hashing.DriverArgon2i, hashing.DriverArgon2d, hashing.DriverArgon2id}

// ──────────────────────────────────────────────────────────────────────────────
// Constructor validation
// ──────────────────────────────────────────────────────────────────────────────

func TestNewArgon2Hasher_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  hashing.Config
		want error
	}{
		{"unknown driver", hashing.Config{Driver: "bcrypt", Version: 0x13, Memory: 64, Time: 1, Threads: 1}, hashing.ErrInvalidAlgorithm},
		{"version 0x12", hashing.Config{Driver: hashing.DriverArgon2id, Version: 0x12, Memory: 64, Time: 1, Threads: 1}, hashing.ErrInvalidVersion},
		{"time=0", hashing.Config{Driver: hashing.DriverArgon2id, Version: 0x13, Memory: 64, Time: 0, Threads: 1}, hashing.ErrInvalidOption},
		{"threads=0", hashing.Config{Driver: hashing.DriverArgon2id, Version: 0x13, Memory: 64, Time: 1, Threads: 0}, hashing.ErrInvalidOption},
		{"memory too low", hashing.Config{Driver: hashing.DriverArgon2id, Version: 0x13, Memory: 8, Time: 1, Threads: 2}, hashing.ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hashing.NewArgon2Hasher(tt.cfg, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := hashing.DefaultConfig()
	assert.Equal(t, hashing.DriverArgon2id, cfg.Driver)
	assert.Equal(t, uint32(0x13), cfg.Version)
	assert.Equal(t, argon2.DefaultMCost, cfg.Memory)
	assert.Equal(t, argon2.DefaultTCost, cfg.Time)
	assert.Equal(t, argon2.DefaultPCost, cfg.Threads)
	assert.NoError(t, cfg.Validate())
}

// ──────────────────────────────────────────────────────────────────────────────
// Make / Check per variant
// ──────────────────────────────────────────────────────────────────────────────

func TestArgon2Hasher_Make_PHCFormat(t *testing.T) {
	for _, d := range allDrivers {
		t.Run(string(d), func(t *testing.T) {
			h := newTestHasher(t, d, nil)
			hash, err := h.Make([]byte("password"), mustSalt(t, testSalt()))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$"+string(d)+"$v=19$m=16,t=1,p=2$"), "got %q", hash)
		})
	}
}

func TestArgon2Hasher_Make_Deterministic(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	salt := mustSalt(t, testSalt())
	h1, err := h.Make([]byte("same"), salt)
	require.NoError(t, err)
	h2, err := h.Make([]byte("same"), salt)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "same password and salt must give the same digest")

	h3, err := h.Make([]byte("same"), mustSalt(t, []byte("fedcba9876543210")))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3, "different salts must give different digests")
}

func TestArgon2Hasher_Check(t *testing.T) {
	for _, d := range allDrivers {
		t.Run(string(d), func(t *testing.T) {
			h := newTestHasher(t, d, nil)
			hash, err := h.Make([]byte("secret"), mustSalt(t, testSalt()))
			require.NoError(t, err)

			ok, err := h.Check([]byte("secret"), hash)
			require.NoError(t, err)
			assert.True(t, ok, "correct password")

			ok, err = h.Check([]byte("Secret"), hash)
			require.NoError(t, err)
			assert.False(t, ok, "wrong password")
		})
	}
}

func TestArgon2Hasher_Check_InvalidHash(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	_, err := h.Check([]byte("pw"), "not-a-hash")
	assert.True(t, errors.Is(err, hashing.ErrInvalidHash), "got %v", err)
}

func TestArgon2Hasher_Check_WrongVariant(t *testing.T) {
	iH := newTestHasher(t, hashing.DriverArgon2i, nil)
	idH := newTestHasher(t, hashing.DriverArgon2id, nil)
	hash, err := idH.Make([]byte("pw"), mustSalt(t, testSalt()))
	require.NoError(t, err)

	_, err = iH.Check([]byte("pw"), hash)
	assert.ErrorIs(t, err, hashing.ErrAlgorithmMismatch)
}

func TestArgon2Hasher_Check_UnknownAlgorithm(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	_, err := h.Check([]byte("pw"), "$scrypt$ln=4,r=8,p=1$c2FsdHNhbHQ$"+strings.Repeat("A", 43))
	assert.ErrorIs(t, err, hashing.ErrInvalidAlgorithm)
}

func TestArgon2Hasher_Secret(t *testing.T) {
	salt := mustSalt(t, testSalt())
	a := newTestHasher(t, hashing.DriverArgon2id, []byte("pepper-a"))
	b := newTestHasher(t, hashing.DriverArgon2id, []byte("pepper-b"))
	plain := newTestHasher(t, hashing.DriverArgon2id, nil)

	hashA, err := a.Make([]byte("pw"), salt)
	require.NoError(t, err)
	hashB, err := b.Make([]byte("pw"), salt)
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashB)
	assert.True(t, a.Keyed())
	assert.False(t, plain.Keyed())

	ok, err := a.Check([]byte("pw"), hashA)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Check([]byte("pw"), hashA)
	require.NoError(t, err)
	assert.False(t, ok, "other secret must not verify")

	ok, err = plain.Check([]byte("pw"), hashA)
	require.NoError(t, err)
	assert.False(t, ok, "missing secret must not verify")
}

func TestArgon2Hasher_CheckHash_MissingHashSegment(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	ok, err := h.Check([]byte("pw"), "$argon2id$v=19$m=16,t=1,p=2$MDEyMzQ1Njc4OWFiY2RlZg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_CheckHash_ShortSalt(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	// "c2FsdA" decodes to 4 bytes, below argon2.MinSaltLen.
	ok, err := h.Check([]byte("pw"), "$argon2id$v=19$m=16,t=1,p=2$c2FsdA$"+strings.Repeat("A", 43))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_Make_SaltTooShort(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	_, err := h.Make([]byte("pw"), mustSalt(t, []byte("short")))
	assert.ErrorIs(t, err, hashing.ErrInvalidSalt)
}

// ──────────────────────────────────────────────────────────────────────────────
// NeedsRehash / Info
// ──────────────────────────────────────────────────────────────────────────────

func TestArgon2Hasher_NeedsRehash(t *testing.T) {
	cfg := fastConfig(hashing.DriverArgon2id)
	h1, err := hashing.NewArgon2Hasher(cfg, nil)
	require.NoError(t, err)
	hash, err := h1.Make([]byte("pw"), mustSalt(t, testSalt()))
	require.NoError(t, err)

	needs, err := h1.NeedsRehash(hash)
	require.NoError(t, err)
	assert.False(t, needs, "same params")

	cfg.Memory *= 2
	h2, err := hashing.NewArgon2Hasher(cfg, nil)
	require.NoError(t, err)
	needs, err = h2.NeedsRehash(hash)
	require.NoError(t, err)
	assert.True(t, needs, "memory differs")

	cfg = fastConfig(hashing.DriverArgon2id)
	cfg.Version = uint32(argon2.V0x10)
	h3, err := hashing.NewArgon2Hasher(cfg, nil)
	require.NoError(t, err)
	needs, err = h3.NeedsRehash(hash)
	require.NoError(t, err)
	assert.True(t, needs, "version differs")
}

func TestArgon2Hasher_Info(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2d, nil)
	hash, err := h.Make([]byte("pw"), mustSalt(t, testSalt()))
	require.NoError(t, err)

	info, err := h.Info(hash)
	require.NoError(t, err)
	assert.Equal(t, hashing.DriverArgon2d, info.Driver)
	assert.Equal(t, 19, info.Params["version"])
	assert.Equal(t, uint32(16), info.Params["memory"])
	assert.Equal(t, uint32(1), info.Params["time"])
	assert.Equal(t, uint32(2), info.Params["threads"])
	assert.Equal(t, uint32(argon2.DefaultOutputLen), info.Params["key_len"])

	other := newTestHasher(t, hashing.DriverArgon2i, nil)
	_, err = other.Info(hash)
	assert.ErrorIs(t, err, hashing.ErrAlgorithmMismatch)
}

func TestArgon2Hasher_SatisfiesHasherInterface(t *testing.T) {
	var _ hashing.Hasher = newTestHasher(t, hashing.DriverArgon2id, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Interoperability
// ──────────────────────────────────────────────────────────────────────────────

// Digest from the Argon2 reference implementation's test suite.
func TestVerify_ReferenceDigest(t *testing.T) {
	if testing.Short() {
		t.Skip("64 MiB digest skipped in -short mode")
	}
	const digest = "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA"

	ok, err := hashing.Verify(digest, []byte("password"), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hashing.Verify(digest, []byte("passwore"), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_AssociatedDataParam(t *testing.T) {
	params, err := argon2.NewParams(16, 1, 2, 32)
	require.NoError(t, err)
	ad := []byte("context")
	tag, err := argon2.New(argon2.Argon2id, argon2.V0x13, params).Hash([]byte("pw"), testSalt(), ad)
	require.NoError(t, err)

	ph := &hashing.PasswordHash{
		Algorithm: "argon2id",
		Version:   19,
		Params: []hashing.Param{
			{Name: "m", Value: "16"}, {Name: "t", Value: "1"}, {Name: "p", Value: "2"},
			{Name: "data", Value: "Y29udGV4dA"},
		},
		Salt: mustSalt(t, testSalt()),
		Hash: tag,
	}

	ok, err := hashing.Verify(ph.String(), []byte("pw"), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_MissingVersionDefaultsTo0x13(t *testing.T) {
	h := newTestHasher(t, hashing.DriverArgon2id, nil)
	hash, err := h.Make([]byte("pw"), mustSalt(t, testSalt()))
	require.NoError(t, err)

	unversioned := strings.Replace(hash, "$v=19", "", 1)
	ok, err := hashing.Verify(unversioned, []byte("pw"), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Version10RoundTrip(t *testing.T) {
	cfg := fastConfig(hashing.DriverArgon2i)
	cfg.Version = uint32(argon2.V0x10)
	digest, err := hashing.Hash(cfg, []byte("pw"), testSalt(), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2i$v=16$"))

	ok, err := hashing.Verify(digest, []byte("pw"), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Without the v= segment the digest is read as 0x13 and no longer matches.
	ok, err = hashing.Verify(strings.Replace(digest, "$v=16", "", 1), []byte("pw"), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDetectDriver(t *testing.T) {
	for _, d := range allDrivers {
		h := newTestHasher(t, d, nil)
		hash, err := h.Make([]byte("pw"), mustSalt(t, testSalt()))
		require.NoError(t, err)
		got, ok := hashing.DetectDriver(hash)
		assert.True(t, ok)
		assert.Equal(t, d, got)
	}

	_, ok := hashing.DetectDriver("some-random-string")
	assert.False(t, ok)
}

func TestNewArgon2Hasher_CopiesSecret(t *testing.T) {
	secret := []byte("pepper")
	h := newTestHasher(t, hashing.DriverArgon2id, secret)
	salt := mustSalt(t, testSalt())
	before, err := h.Make([]byte("pw"), salt)
	require.NoError(t, err)

	copy(secret, bytes.Repeat([]byte{'x'}, len(secret)))
	after, err := h.Make([]byte("pw"), salt)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
