//go:build !(amd64 && linux)

package jit

const supported = false
