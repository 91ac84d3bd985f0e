// Package hashing computes and verifies self-describing Argon2 password
// digests.
//
// # Architecture
//
// A [Config] is one complete cost policy: variant, version, memory, time and
// parallelism. A [Store] holds the active policy and is passed explicitly to
// whatever hashes or verifies; [Store.Configure] replaces the whole policy at
// once, so readers never observe a half-updated policy.
//
// [Argon2Hasher] binds a policy to an optional secret key (a "pepper") and
// implements the [Hasher] interface. Three variants are available:
//
//   - [DriverArgon2id]: recommended for new systems
//   - [DriverArgon2i]: data-independent memory access
//   - [DriverArgon2d]: data-dependent memory access, not for side-channel exposed hosts
//
// # Quick start
//
//	store := hashing.NewStore()
//	digest, err := store.Hash([]byte("correct horse"), salt, nil)
//	if err != nil { log.Fatal(err) }
//
//	ok, err := store.Verify(digest, []byte("correct horse"), nil) // true
//
// The caller supplies the salt; this package never generates one.
//
// # Digest format
//
// Digests use the PHC string format:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<base64-salt>$<base64-hash>
//
// All parameters are self-contained in the string. Verification reads them
// from the digest and never consults the store's policy, so digests stay
// verifiable after the policy changes. Call [Store.NeedsRehash] after a
// successful login to find digests produced under an older policy.
//
// # Defaults
//
// Argon2id, version 0x13, m=19456 KiB, t=2, p=1, 32-byte output.
// This matches the OWASP minimum for Argon2id.
package hashing
