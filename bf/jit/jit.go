// Package jit lowers a compiled bf.Program to native x86-64 Linux
// machine code, maps it into executable memory, and transfers control to
// it. It is only functional on amd64/linux (see Supported); everywhere
// else Run returns an error and the host is expected to fall back to
// bf.VM.
package jit

// Supported reports whether this build can lower and execute native code
// on the current platform. Its value is fixed per build by
// support_amd64_linux.go or support_other.go.
func Supported() bool {
	return supported
}
