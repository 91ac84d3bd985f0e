package abi_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-argon2-wasm/abi"
	"github.com/hasbyte1/go-argon2-wasm/argon2"
	"github.com/hasbyte1/go-argon2-wasm/hashing"
	"github.com/hasbyte1/go-argon2-wasm/internal/rawmem"
)

func TestTag(t *testing.T) {
	assert.Equal(t, uint32(0x5f5f5f69), abi.TagArgon2i)
	assert.Equal(t, uint32(0x5f5f5f64), abi.TagArgon2d)
	assert.Equal(t, uint32(0x5f5f6469), abi.TagArgon2id)

	for _, d := range []hashing.DriverName{hashing.DriverArgon2i, hashing.DriverArgon2d, hashing.DriverArgon2id} {
		tag, err := abi.TagOf(d)
		require.NoError(t, err)
		got, err := abi.ParseTag(tag)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := abi.TagOf("bcrypt")
	assert.ErrorIs(t, err, hashing.ErrInvalidAlgorithm)

	_, err = abi.ParseTag(abi.Tag("xx__"))
	assert.ErrorIs(t, err, hashing.ErrInvalidAlgorithm)
	assert.Contains(t, err.Error(), `"xx__"`)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want abi.Status
	}{
		{nil, abi.OK},
		{fmt.Errorf("wrapped: %w", rawmem.ErrExhausted), abi.ResourceExhausted},
		{hashing.ErrMemoryLimit, abi.ResourceExhausted},
		{fmt.Errorf("%w: %w", hashing.ErrHashFailed, argon2.ErrMemory), abi.ResourceExhausted},
		{abi.ErrOutOfBounds, abi.InvalidInput},
		{hashing.ErrInvalidHash, abi.InvalidInput},
		{hashing.ErrInvalidSalt, abi.InvalidInput},
		{hashing.ErrInvalidInput, abi.InvalidInput},
		{hashing.ErrInvalidAlgorithm, abi.InvalidParams},
		{hashing.ErrInvalidVersion, abi.InvalidParams},
		{hashing.ErrInvalidOption, abi.InvalidParams},
		{hashing.ErrHashFailed, abi.AlgorithmFailure},
		{errors.New("anything else"), abi.AlgorithmFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, abi.StatusOf(tt.err), "%v", tt.err)
	}
}

func TestStatus_Err(t *testing.T) {
	assert.NoError(t, abi.OK.Err())
	for _, s := range []abi.Status{abi.InvalidInput, abi.InvalidParams, abi.ResourceExhausted, abi.AlgorithmFailure} {
		err := s.Err()
		require.Error(t, err)
		assert.Equal(t, s, abi.StatusOf(err), s.String())
	}
	assert.Error(t, abi.Status(99).Err())
	assert.Equal(t, "status(99)", abi.Status(99).String())
}

func TestSliceMemory(t *testing.T) {
	m := abi.NewSliceMemory(0x100, make([]byte, 16))
	assert.Equal(t, uint32(0x100), m.Base())
	assert.Equal(t, uint32(16), m.Size())

	assert.True(t, m.Write(0x100, []byte("abcd")))
	b, ok := m.Read(0x100, 4)
	require.True(t, ok)
	assert.Equal(t, []byte("abcd"), b)

	assert.True(t, m.WriteUint32Le(0x10c, 0x01020304))
	v, ok := m.ReadUint32Le(0x10c)
	require.True(t, ok)
	assert.Equal(t, uint32(0x01020304), v)
	b, _ = m.Read(0x10c, 4)
	assert.Equal(t, []byte{4, 3, 2, 1}, b)

	_, ok = m.Read(0xff, 1)
	assert.False(t, ok, "below base")
	_, ok = m.Read(0x10d, 4)
	assert.False(t, ok, "past end")
	assert.False(t, m.WriteUint32Le(0x10d, 1))
	_, ok = m.Read(0xffffffff, 2)
	assert.False(t, ok, "overflow")
}

func TestBorrowed(t *testing.T) {
	m := abi.NewSliceMemory(0, make([]byte, 16))
	require.True(t, m.Write(8, []byte("key")))

	b := abi.Borrowed{Ptr: 8, Len: 3}
	got, err := b.Bytes(m)
	require.NoError(t, err)
	assert.Equal(t, []byte("key"), got)

	got[0] = 'K'
	again, _ := b.Bytes(m)
	assert.Equal(t, []byte("key"), again, "Bytes must copy")

	opt, err := abi.Borrowed{}.Optional(m)
	require.NoError(t, err)
	assert.Nil(t, opt)

	empty, err := abi.Borrowed{Ptr: 8}.Optional(m)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = abi.Borrowed{Ptr: 12, Len: 8}.Bytes(m)
	assert.ErrorIs(t, err, abi.ErrOutOfBounds)
}
