// Package argon2 implements the Argon2 memory-hard key derivation function
// as described in RFC 9106.
//
// All three variants are supported ([Argon2d], [Argon2i], [Argon2id]) in both
// published versions ([V0x10] and [V0x13]), together with the optional secret
// key K and associated data X inputs of the specification.
//
// # Usage
//
//	params, err := argon2.NewParams(19456, 2, 1, argon2.DefaultOutputLen)
//	if err != nil { ... }
//	ctx, err := argon2.NewWithSecret(pepper, argon2.Argon2id, argon2.V0x13, params)
//	if err != nil { ... }
//	tag, err := ctx.Hash(password, salt, nil)
//
// A [Context] is immutable after construction and safe for concurrent use.
// Lanes of a single computation are filled in parallel with one goroutine per
// lane.
//
// The package is a fork of golang.org/x/crypto/argon2, which offers neither
// Argon2d, a secret key, associated data nor version 0x10. The upstream BSD
// license is kept in LICENSE.
package argon2
