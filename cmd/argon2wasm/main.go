//go:build wasip1

// Command argon2wasm is the Argon2 module built as a WebAssembly reactor.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o argon2.wasm ./cmd/argon2wasm
//
// Exports (all i32):
//
//	alloc(size) -> ptr
//	dealloc(ptr, size)
//	setup_params(tag, version, m_cost, t_cost, p_cost) -> status
//	hash(pw_ptr, pw_len, salt_ptr, salt_len, secret_ptr, secret_len, out_ptr) -> status
//	verify(digest_ptr, digest_len, pw_ptr, pw_len, secret_ptr, secret_len, out_ptr) -> status
//
// Imports env.panic(msg_ptr, msg_len), called once before any non-zero
// status is returned.
package main

import (
	"unsafe"

	"github.com/hasbyte1/go-argon2-wasm/abi"
	"github.com/hasbyte1/go-argon2-wasm/hashing"
	"github.com/hasbyte1/go-argon2-wasm/internal/rawmem"
)

// heapWords sizes the boundary arena: 4 MiB of uint64 for 8-byte alignment.
// Argon2 working memory comes from the Go heap, not from here.
const heapWords = 1 << 19

// memoryLimitKiB caps the Argon2 memory cost at 2 GiB, half of wasm32
// linear memory, leaving room for the arena and the Go runtime.
const memoryLimitKiB = 1 << 21

var (
	heap   [heapWords]uint64
	module *abi.Module
)

func init() {
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&heap[0])), len(heap)*8)
	base := uint32(uintptr(unsafe.Pointer(&heap[0])))

	m, err := abi.NewModule(
		abi.NewSliceMemory(base, buf),
		rawmem.New(base, uint32(len(buf))),
		hashing.NewStore(hashing.WithMemoryLimit(memoryLimitKiB)),
		hostPanic,
	)
	if err != nil {
		panic(err)
	}
	module = m
}

//go:wasmimport env panic
func hostPanic(ptr, n uint32)

//go:wasmexport alloc
func alloc(size uint32) uint32 {
	return module.Alloc(size)
}

//go:wasmexport dealloc
func dealloc(ptr, size uint32) {
	module.Dealloc(ptr, size)
}

//go:wasmexport setup_params
func setupParams(tag, version, mCost, tCost, pCost uint32) uint32 {
	return uint32(module.SetupParams(tag, version, mCost, tCost, pCost))
}

//go:wasmexport hash
func hash(pwPtr, pwLen, saltPtr, saltLen, secretPtr, secretLen, out uint32) uint32 {
	return uint32(module.Hash(
		abi.Borrowed{Ptr: pwPtr, Len: pwLen},
		abi.Borrowed{Ptr: saltPtr, Len: saltLen},
		abi.Borrowed{Ptr: secretPtr, Len: secretLen},
		out,
	))
}

//go:wasmexport verify
func verify(digestPtr, digestLen, pwPtr, pwLen, secretPtr, secretLen, out uint32) uint32 {
	return uint32(module.Verify(
		abi.Borrowed{Ptr: digestPtr, Len: digestLen},
		abi.Borrowed{Ptr: pwPtr, Len: pwLen},
		abi.Borrowed{Ptr: secretPtr, Len: secretLen},
		out,
	))
}

func main() {}
