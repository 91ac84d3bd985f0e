//go:build !wasip1

// Command argon2wasm only does something useful when built for wasip1:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o argon2.wasm ./cmd/argon2wasm
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "argon2wasm: build with GOOS=wasip1 GOARCH=wasm -buildmode=c-shared")
	os.Exit(2)
}
