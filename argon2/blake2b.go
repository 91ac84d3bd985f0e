// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Derived from golang.org/x/crypto/argon2; modified to add Argon2d, the
// secret key K, associated data and the version 0x10 overwrite.

package argon2

import (
	"encoding/binary"
	"hash"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// blake2bLong is the variable-length hash H' of RFC 9106 section 3.3.
// It fills out completely.
//
// For len(out) <= 64 it is BLAKE2b-len(out) over LE32(len(out)) || in.
// Longer outputs chain 64-byte BLAKE2b digests, keeping the first 32 bytes
// of each, and finish with a digest sized to the remainder.
func blake2bLong(out, in []byte) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(out)))

	if len(out) <= blake2b.Size {
		h := newBlake2b(len(out))
		h.Write(prefix[:])
		h.Write(in)
		h.Sum(out[:0])
		return
	}

	var v [blake2b.Size]byte
	h := newBlake2b(blake2b.Size)
	h.Write(prefix[:])
	h.Write(in)
	h.Sum(v[:0])

	copied := copy(out, v[:blake2b.Size/2])
	for len(out)-copied > blake2b.Size {
		h.Reset()
		h.Write(v[:])
		h.Sum(v[:0])
		copied += copy(out[copied:], v[:blake2b.Size/2])
	}

	last := newBlake2b(len(out) - copied)
	last.Write(v[:])
	last.Sum(out[copied:copied])
}

// newBlake2b returns an unkeyed BLAKE2b hash with the given digest size.
// Sizes are always in [1, 64] here, where blake2b.New cannot fail.
func newBlake2b(size int) hash.Hash {
	h, err := blake2b.New(size, nil)
	if err != nil {
		panic("argon2: blake2b.New(" + strconv.Itoa(size) + "): " + err.Error())
	}
	return h
}
