//go:build !(amd64 && linux)

package jit

import (
	"errors"

	"brainfuck/bf"
)

// Run always fails on this platform. Callers must check Supported before
// calling Run; the host's fallback to bf.VM is expected to happen
// there, not inside this package.
func Run(prog bf.Program) error {
	return errors.New("jit: unsupported on this platform, want amd64/linux")
}
