package abi

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/hasbyte1/go-argon2-wasm/hashing"
)

// Algorithm tags: four ASCII bytes read as a little-endian u32.
var (
	TagArgon2i  = Tag("i___")
	TagArgon2d  = Tag("d___")
	TagArgon2id = Tag("id__")
)

// Tag packs the first four bytes of s, padded with NUL, into a u32.
func Tag(s string) uint32 {
	var b [4]byte
	copy(b[:], s)
	return binary.LittleEndian.Uint32(b[:])
}

// TagOf returns the tag of a variant.
func TagOf(d hashing.DriverName) (uint32, error) {
	switch d {
	case hashing.DriverArgon2i:
		return TagArgon2i, nil
	case hashing.DriverArgon2d:
		return TagArgon2d, nil
	case hashing.DriverArgon2id:
		return TagArgon2id, nil
	default:
		return 0, fmt.Errorf("%w: %q", hashing.ErrInvalidAlgorithm, d)
	}
}

// ParseTag maps a tag to its variant.
func ParseTag(tag uint32) (hashing.DriverName, error) {
	switch tag {
	case TagArgon2i:
		return hashing.DriverArgon2i, nil
	case TagArgon2d:
		return hashing.DriverArgon2d, nil
	case TagArgon2id:
		return hashing.DriverArgon2id, nil
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], tag)
	return "", fmt.Errorf("%w: tag %s", hashing.ErrInvalidAlgorithm, strconv.QuoteToASCII(string(b[:])))
}
