//go:build linux

package main

import (
	"io"
	"os"
	"syscall"
)

// dupOntoStdin arranges for fd 0 to read from input for the duration of a
// JIT run, then restores the previous fd 0 on return. A no-op when input is
// already os.Stdin.
func dupOntoStdin(input io.Reader) (func(), error) {
	f, ok := input.(*os.File)
	if !ok || f == os.Stdin {
		return func() {}, nil
	}

	saved, err := syscall.Dup(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	if err := syscall.Dup2(int(f.Fd()), int(os.Stdin.Fd())); err != nil {
		_ = syscall.Close(saved)
		return nil, err
	}

	return func() {
		_ = syscall.Dup2(saved, int(os.Stdin.Fd()))
		_ = syscall.Close(saved)
	}, nil
}
