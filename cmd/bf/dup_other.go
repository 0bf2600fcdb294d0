//go:build !linux

package main

import "io"

// dupOntoStdin is a no-op off Linux: the JIT backend is unsupported there
// (see jit.Supported), so runJIT is never reached with a non-stdin input.
func dupOntoStdin(input io.Reader) (func(), error) {
	return func() {}, nil
}
