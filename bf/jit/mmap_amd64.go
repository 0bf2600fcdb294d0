//go:build amd64 && linux

package jit

import (
	"syscall"
	"unsafe"
)

// execBuf is a small wrapper around an anonymous mmap'd region, taken
// through a read-write phase (to receive the copied-in code) and then
// flipped to read-execute (PROT_READ|PROT_EXEC, no longer writable; not
// execute-only) before control is transferred into it.
type execBuf struct {
	data []byte
}

func allocExecBuf(size int) (*execBuf, error) {
	data, err := syscall.Mmap(-1, 0, size,
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_PRIVATE|syscall.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &execBuf{data: data}, nil
}

func (e *execBuf) makeExecutable() error {
	return syscall.Mprotect(e.data, syscall.PROT_READ|syscall.PROT_EXEC)
}

func (e *execBuf) release() error {
	return syscall.Munmap(e.data)
}

// call casts the mapped buffer to a nullary, void-returning Go function and
// invokes it. The cast works because a Go func value is a pointer to a
// struct whose first word is the entry point; wrapping the address of the
// first mapped byte in a struct{ code uintptr } and reinterpreting a pointer
// to that struct as a func() produces a callable value whose entry point is
// the start of our generated code.
func (e *execBuf) call() {
	fv := &struct{ code uintptr }{uintptr(unsafe.Pointer(&e.data[0]))}
	fn := *(*func())(unsafe.Pointer(&fv))
	fn()
}
