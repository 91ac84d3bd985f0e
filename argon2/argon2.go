// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Derived from golang.org/x/crypto/argon2; modified to add Argon2d, the
// secret key K, associated data and the version 0x10 overwrite.

package argon2

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"golang.org/x/crypto/blake2b"
)

const syncPoints = 4

// Context is a configured Argon2 instance: algorithm, version, cost
// parameters and an optional secret key.
type Context struct {
	algorithm Algorithm
	version   Version
	params    Params
	secret    []byte
}

// New returns a keyless Context.
func New(algorithm Algorithm, version Version, params Params) *Context {
	return &Context{algorithm: algorithm, version: version, params: params}
}

// NewWithSecret returns a Context keyed with secret. The secret is copied.
func NewWithSecret(secret []byte, algorithm Algorithm, version Version, params Params) (*Context, error) {
	if uint64(len(secret)) > MaxSecretLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrSecretTooLong, len(secret))
	}
	c := New(algorithm, version, params)
	c.secret = append([]byte(nil), secret...)
	return c, nil
}

// Algorithm returns the configured variant.
func (c *Context) Algorithm() Algorithm { return c.algorithm }

// Version returns the configured version.
func (c *Context) Version() Version { return c.version }

// Params returns the configured cost parameters.
func (c *Context) Params() Params { return c.params }

// Keyed reports whether the Context carries a secret key.
func (c *Context) Keyed() bool { return c.secret != nil }

// Hash derives a tag of Params().OutputLen() bytes from password and salt.
// ad is the optional associated data X.
func (c *Context) Hash(password, salt, ad []byte) ([]byte, error) {
	out := make([]byte, c.params.outputLen)
	if err := c.HashInto(out, password, salt, ad); err != nil {
		return nil, err
	}
	return out, nil
}

// HashInto derives len(out) bytes into out. The output length hashed into H0
// is len(out), not Params().OutputLen().
func (c *Context) HashInto(out, password, salt, ad []byte) error {
	if len(out) < MinOutputLen || uint64(len(out)) > math.MaxUint32 {
		return fmt.Errorf("%w: output length %d", ErrInvalidParams, len(out))
	}
	if len(salt) < MinSaltLen {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrSaltTooShort, len(salt), MinSaltLen)
	}
	if c.params.pCost < MinPCost || c.params.BlockCount() < 2*syncPoints*c.params.pCost {
		return fmt.Errorf("%w: m=%d p=%d", ErrInvalidParams, c.params.mCost, c.params.pCost)
	}
	if c.params.BlockCount() > MaxMemoryKiB {
		return fmt.Errorf("%w: %d KiB, at most %d KiB", ErrMemory, c.params.BlockCount(), MaxMemoryKiB)
	}
	switch c.algorithm {
	case Argon2d, Argon2i, Argon2id:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidAlgorithm, uint32(c.algorithm))
	}
	switch c.version {
	case V0x10, V0x13:
	default:
		return fmt.Errorf("%w: 0x%x", ErrInvalidVersion, uint32(c.version))
	}

	h0 := c.initHash(password, salt, ad, uint32(len(out)))
	memory := c.params.BlockCount()
	threads := c.params.pCost
	B := initBlocks(&h0, memory, threads)
	c.processBlocks(B, memory, threads)
	extractKey(out, B, memory, threads)
	return nil
}

// Verify recomputes the tag for password and salt and compares it with
// expected in constant time. The tag length is taken from expected.
func (c *Context) Verify(password, salt, ad, expected []byte) bool {
	if len(expected) < MinOutputLen {
		return false
	}
	computed := make([]byte, len(expected))
	if err := c.HashInto(computed, password, salt, ad); err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// initHash computes H0 over the parameters and inputs, leaving 8 spare
// bytes for the block index and lane appended in initBlocks.
func (c *Context) initHash(password, salt, ad []byte, tagLen uint32) [blake2b.Size + 8]byte {
	var (
		h0     [blake2b.Size + 8]byte
		params [24]byte
		tmp    [4]byte
	)

	b2, _ := blake2b.New512(nil)
	binary.LittleEndian.PutUint32(params[0:4], c.params.pCost)
	binary.LittleEndian.PutUint32(params[4:8], tagLen)
	binary.LittleEndian.PutUint32(params[8:12], c.params.mCost)
	binary.LittleEndian.PutUint32(params[12:16], c.params.tCost)
	binary.LittleEndian.PutUint32(params[16:20], uint32(c.version))
	binary.LittleEndian.PutUint32(params[20:24], uint32(c.algorithm))
	b2.Write(params[:])
	for _, in := range [][]byte{password, salt, c.secret, ad} {
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(in)))
		b2.Write(tmp[:])
		b2.Write(in)
	}
	b2.Sum(h0[:0])
	return h0
}

func initBlocks(h0 *[blake2b.Size + 8]byte, memory, threads uint32) []block {
	var block0 [1024]byte
	B := make([]block, memory)
	for lane := uint32(0); lane < threads; lane++ {
		j := lane * (memory / threads)
		binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)

		for i := uint32(0); i < 2; i++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], i)
			blake2bLong(block0[:], h0[:])
			for k := range B[j+i] {
				B[j+i][k] = binary.LittleEndian.Uint64(block0[k*8:])
			}
		}
	}
	return B
}

func (c *Context) processBlocks(B []block, memory, threads uint32) {
	lanes := memory / threads
	segments := lanes / syncPoints
	time := c.params.tCost
	mode := c.algorithm
	xor := c.version == V0x13

	processSegment := func(n, slice, lane uint32, wg *sync.WaitGroup) {
		defer wg.Done()

		independent := mode == Argon2i || (mode == Argon2id && n == 0 && slice < syncPoints/2)

		var addresses, in, zero block
		if independent {
			in[0] = uint64(n)
			in[1] = uint64(lane)
			in[2] = uint64(slice)
			in[3] = uint64(memory)
			in[4] = uint64(time)
			in[5] = uint64(mode)
		}

		index := uint32(0)
		if n == 0 && slice == 0 {
			index = 2 // the first two blocks of each lane come from H0
			if independent {
				in[6]++
				processBlock(&addresses, &in, &zero, false)
				processBlock(&addresses, &addresses, &zero, false)
			}
		}

		offset := lane*lanes + slice*segments + index
		var random uint64
		for index < segments {
			prev := offset - 1
			if index == 0 && slice == 0 {
				prev += lanes
			}
			if independent {
				if index%blockLength == 0 {
					in[6]++
					processBlock(&addresses, &in, &zero, false)
					processBlock(&addresses, &addresses, &zero, false)
				}
				random = addresses[index%blockLength]
			} else {
				random = B[prev][0]
			}
			ref := indexAlpha(random, lanes, segments, threads, n, slice, lane, index)
			processBlock(&B[offset], &B[prev], &B[ref], xor && n > 0)
			index, offset = index+1, offset+1
		}
	}

	for n := uint32(0); n < time; n++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			var wg sync.WaitGroup
			for lane := uint32(0); lane < threads; lane++ {
				wg.Add(1)
				go processSegment(n, slice, lane, &wg)
			}
			wg.Wait()
		}
	}
}

func extractKey(out []byte, B []block, memory, threads uint32) {
	lanes := memory / threads
	for lane := uint32(0); lane < threads-1; lane++ {
		for i, v := range B[(lane*lanes)+lanes-1] {
			B[memory-1][i] ^= v
		}
	}

	var final [1024]byte
	for i, v := range B[memory-1] {
		binary.LittleEndian.PutUint64(final[i*8:], v)
	}
	blake2bLong(out, final[:])
}

// indexAlpha maps a pseudo-random value to the reference block index.
func indexAlpha(rand uint64, lanes, segments, threads, n, slice, lane, index uint32) uint32 {
	refLane := uint32(rand>>32) % threads
	if n == 0 && slice == 0 {
		refLane = lane
	}
	m, s := 3*segments, ((slice+1)%syncPoints)*segments
	if lane == refLane {
		m += index
	}
	if n == 0 {
		m, s = slice*segments, 0
		if slice == 0 || lane == refLane {
			m += index
		}
	}
	if index == 0 || lane == refLane {
		m--
	}
	return phi(rand, uint64(m), uint64(s), refLane, lanes)
}

func phi(rand, m, s uint64, lane, lanes uint32) uint32 {
	p := rand & 0xFFFFFFFF
	p = (p * p) >> 32
	p = (p * m) >> 32
	return lane*lanes + uint32((s+m-(p+1))%uint64(lanes))
}
