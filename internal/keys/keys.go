// Package keys handles the secret and salt material supplied on the command
// line.
package keys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/hasbyte1/go-argon2-wasm/argon2"
)

// MaxSecretLen bounds secrets accepted on the command line.
const MaxSecretLen = 1024

// EncodeKey returns the standard base64 encoding of key, suitable for
// storing in a configuration file or environment variable.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKey decodes a base64-encoded key previously produced by [EncodeKey].
// It accepts the standard and URL-safe alphabets, padded or not.
//
// Example:
//
//	secret, err := keys.DecodeKey(os.Getenv("ARGON2_SECRET"))
func DecodeKey(encoded string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if key, err := enc.DecodeString(encoded); err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("keys: failed to decode key: not base64")
}

// DecodeSecret is [DecodeKey] limited to [MaxSecretLen] bytes. An empty
// string yields a nil secret.
func DecodeSecret(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	key, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	if len(key) > MaxSecretLen {
		return nil, fmt.Errorf("keys: secret is %d bytes, at most %d allowed", len(key), MaxSecretLen)
	}
	return key, nil
}

// Random returns n cryptographically random bytes from crypto/rand.
func Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("keys: failed to generate %d random bytes: %w", n, err)
	}
	return b, nil
}

// Salt returns a random salt of [argon2.RecommendedSaltLen] bytes.
func Salt() ([]byte, error) {
	return Random(argon2.RecommendedSaltLen)
}
