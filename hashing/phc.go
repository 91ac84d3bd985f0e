package hashing

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// PHC string format
// ──────────────────────────────────────────────────────────────────────────────

// Limits of the PHC string format.
const (
	maxIdentLen      = 32
	maxParamValueLen = 64

	// MinSaltB64Len is the shortest accepted salt, in base64 characters.
	MinSaltB64Len = 4
	// MaxSaltB64Len is the longest accepted salt, in base64 characters.
	MaxSaltB64Len = 64

	// MinOutputLen is the shortest accepted hash output, in bytes.
	MinOutputLen = 10
	// MaxOutputLen is the longest accepted hash output, in bytes.
	MaxOutputLen = 64
)

// b64 is the standard alphabet without padding (RFC 4648 §4 without "="),
// the convention of the Argon2 reference implementation.
var b64 = base64.RawStdEncoding.Strict()

// Param is one name=value pair of the parameter segment.
type Param struct {
	Name  string
	Value string
}

// PasswordHash is a parsed PHC string:
//
//	$<id>[$v=<version>][$<param>=<value>(,<param>=<value>)*][$<salt>[$<hash>]]
//
// Optional segments that are absent are left at their zero value.
type PasswordHash struct {
	// Algorithm is the identifier, e.g. "argon2id".
	Algorithm string
	// Version is the v= value, or 0 when the segment is absent.
	Version uint32
	// Params holds the parameter segment in order of appearance.
	Params []Param
	// Salt is the salt segment, or "" when absent.
	Salt Salt
	// Hash is the decoded hash output, or nil when absent.
	Hash []byte
}

// ParsePasswordHash parses a PHC string. It checks structure and encoding
// only; algorithm-specific parameters are interpreted by the [Hasher].
func ParsePasswordHash(s string) (*PasswordHash, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("%w: missing leading '$'", ErrInvalidHash)
	}
	fields := strings.Split(s[1:], "$")

	ph := &PasswordHash{Algorithm: fields[0]}
	if !validIdent(ph.Algorithm) {
		return nil, fmt.Errorf("%w: invalid algorithm identifier %q", ErrInvalidHash, ph.Algorithm)
	}

	i := 1
	if i < len(fields) && strings.HasPrefix(fields[i], "v=") {
		v, err := parseKV(fields[i], "v")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		ph.Version = v
		i++
	}

	if i < len(fields) && strings.Contains(fields[i], "=") {
		params, err := parseParams(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		ph.Params = params
		i++
	}

	if i < len(fields) {
		salt, err := NewSalt(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
		}
		ph.Salt = salt
		i++
	}

	if i < len(fields) {
		out, err := b64.DecodeString(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hash base64: %v", ErrInvalidHash, err)
		}
		if len(out) < MinOutputLen || len(out) > MaxOutputLen {
			return nil, fmt.Errorf("%w: hash output must be %d..%d bytes, got %d",
				ErrInvalidHash, MinOutputLen, MaxOutputLen, len(out))
		}
		ph.Hash = out
		i++
	}

	if i < len(fields) {
		return nil, fmt.Errorf("%w: unexpected trailing segment %q", ErrInvalidHash, fields[i])
	}
	return ph, nil
}

// String serialises the hash back into PHC format.
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt_base64>$<hash_base64>
func (ph *PasswordHash) String() string {
	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(ph.Algorithm)
	if ph.Version != 0 {
		b.WriteString("$v=")
		b.WriteString(strconv.FormatUint(uint64(ph.Version), 10))
	}
	if len(ph.Params) > 0 {
		b.WriteByte('$')
		for i, p := range ph.Params {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(p.Name)
			b.WriteByte('=')
			b.WriteString(p.Value)
		}
	}
	if ph.Salt != "" {
		b.WriteByte('$')
		b.WriteString(string(ph.Salt))
		if ph.Hash != nil {
			b.WriteByte('$')
			b.WriteString(b64.EncodeToString(ph.Hash))
		}
	}
	return b.String()
}

// Param returns the value of the named parameter.
func (ph *PasswordHash) Param(name string) (string, bool) {
	for _, p := range ph.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// parseKV parses a "key=value" decimal field.
func parseKV(s, key string) (uint32, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected %q prefix in %q", prefix, s)
	}
	v, err := strconv.ParseUint(s[len(prefix):], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value in %q", s)
	}
	return uint32(v), nil
}

// parseParams splits "m=19456,t=2,p=1" into ordered pairs.
func parseParams(s string) ([]Param, error) {
	var out []Param
	seen := make(map[string]bool)
	for _, kv := range strings.Split(s, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed param %q", kv)
		}
		name, value := kv[:eq], kv[eq+1:]
		if !validIdent(name) {
			return nil, fmt.Errorf("invalid param name %q", name)
		}
		if value == "" || len(value) > maxParamValueLen || !validB64Chars(value) {
			return nil, fmt.Errorf("invalid value for param %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate param %q", name)
		}
		seen[name] = true
		out = append(out, Param{Name: name, Value: value})
	}
	return out, nil
}

func validIdent(s string) bool {
	if s == "" || len(s) > maxIdentLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// validB64Chars reports whether s uses only [A-Za-z0-9/+.-].
func validB64Chars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '/', c == '+', c == '.', c == '-':
		default:
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────────────────────────────────
// Salt
// ──────────────────────────────────────────────────────────────────────────────

// Salt is the salt segment of a digest string in its encoded form.
type Salt string

// NewSalt validates an encoded salt: 4..64 characters from [A-Za-z0-9+/.-].
func NewSalt(s string) (Salt, error) {
	if len(s) < MinSaltB64Len {
		return "", fmt.Errorf("%w: %d characters, need at least %d", ErrInvalidSalt, len(s), MinSaltB64Len)
	}
	if len(s) > MaxSaltB64Len {
		return "", fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidSalt, len(s), MaxSaltB64Len)
	}
	if !validB64Chars(s) {
		return "", fmt.Errorf("%w: invalid character in %q", ErrInvalidSalt, s)
	}
	return Salt(s), nil
}

// EncodeSalt encodes raw salt bytes as unpadded standard base64 and
// validates the result with [NewSalt].
func EncodeSalt(raw []byte) (Salt, error) {
	return NewSalt(b64.EncodeToString(raw))
}

// Decode returns the raw salt bytes. At least [argon2.MinSaltLen] bytes are
// required.
func (s Salt) Decode() ([]byte, error) {
	raw, err := b64.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrInvalidSalt, err)
	}
	if len(raw) < argon2.MinSaltLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidSalt, len(raw), argon2.MinSaltLen)
	}
	return raw, nil
}
