//go:build amd64 && linux

package jit

import (
	"fmt"
	"runtime"
	"unsafe"

	"brainfuck/bf"
)

// Run lowers prog to native code, maps it executable, and runs it. The
// generated routine talks to the process's real stdin/stdout directly via
// syscalls (see asm_amd64.go); it does not go through any Go io.Reader or
// io.Writer, since by the time native code is executing there is no Go
// call frame left to invoke one through.
func Run(prog bf.Program) error {
	return runOnTape(prog, make([]byte, bf.TapeSize))
}

// runOnTape is Run's implementation, parameterized over the tape so tests
// in this package can inspect final cell contents the way bf.VM.Tape lets
// VM tests do; Run itself never needs the tape back, since the JIT's own
// output is the program's only externally visible effect in production use.
func runOnTape(prog bf.Program, tape []byte) error {
	code, err := lower(prog, uint64(uintptr(unsafe.Pointer(&tape[0]))))
	if err != nil {
		return err
	}

	buf, err := allocExecBuf(len(code))
	if err != nil {
		return &bf.HostFault{Err: fmt.Errorf("mmap: %w", err)}
	}
	copy(buf.data, code)
	if err := buf.makeExecutable(); err != nil {
		_ = buf.release()
		return &bf.HostFault{Err: fmt.Errorf("mprotect: %w", err)}
	}
	defer buf.release()

	buf.call()
	runtime.KeepAlive(tape)
	return nil
}

// lower translates a compiled Program into a native code buffer, resolving
// every bracket's relative bytecode offset into a relative byte
// displacement via two-pass measurement: every emitter can run in a
// "measure only" mode that reports the byte length it would occupy without
// writing to the buffer, so a forward jump's displacement can be computed
// by summing the measured lengths of the instructions between it and its
// partner before either is actually emitted.
func lower(prog bf.Program, tapeAddr uint64) ([]byte, error) {
	a := &assembler{}
	a.emitPrologue(tapeAddr)

	for i, instr := range prog {
		switch instr.Kind {
		case bf.IncDP:
			a.emitIncDP(instr.N)
		case bf.DecDP:
			a.emitDecDP(instr.N)
		case bf.AddCell:
			a.emitAddCell(instr.N)
		case bf.SubCell:
			a.emitSubCell(instr.N)
		case bf.Write:
			a.emitWrite(1)
		case bf.Read:
			a.emitRead()
		case bf.JumpIfZero:
			partner := i + instr.N - 1
			if partner < 0 || partner >= len(prog) || prog[partner].Kind != bf.JumpIfNotZero || prog[partner].N != instr.N-2 {
				return nil, &bf.HostFault{Err: fmt.Errorf("malformed forward jump at instruction %d", i)}
			}
			disp := a.measureRange(prog, i+1, partner+1)
			a.emitJumpIfZero(int32(disp))
		case bf.JumpIfNotZero:
			partner := i - instr.N - 1
			if partner < 0 || partner >= len(prog) || prog[partner].Kind != bf.JumpIfZero || prog[partner].N != instr.N+2 {
				return nil, &bf.HostFault{Err: fmt.Errorf("malformed backward jump at instruction %d", i)}
			}
			disp := a.measureRange(prog, partner+1, i)
			a.emitJumpIfNotZero(-int32(disp + jumpInstrLen))
		}
	}

	a.emitEpilogue()
	return a.buf, nil
}

// measureRange sums the measured byte length of prog[lo:hi] (half-open:
// indices lo through hi-1) without emitting any of it.
func (a *assembler) measureRange(prog bf.Program, lo, hi int) int {
	total := 0
	for k := lo; k < hi; k++ {
		total += a.measure(func() int { return a.emitInstruction(prog[k]) })
	}
	return total
}

// emitInstruction dispatches a single bytecode instruction to its emitter.
// Jump instructions are measured with a placeholder displacement of 0:
// only their fixed length matters during measurement, since a jump's own
// displacement never depends on another jump's displacement.
func (a *assembler) emitInstruction(instr bf.Instruction) int {
	switch instr.Kind {
	case bf.IncDP:
		return a.emitIncDP(instr.N)
	case bf.DecDP:
		return a.emitDecDP(instr.N)
	case bf.AddCell:
		return a.emitAddCell(instr.N)
	case bf.SubCell:
		return a.emitSubCell(instr.N)
	case bf.Write:
		return a.emitWrite(1)
	case bf.Read:
		return a.emitRead()
	case bf.JumpIfZero:
		return a.emitJumpIfZero(0)
	case bf.JumpIfNotZero:
		return a.emitJumpIfNotZero(0)
	default:
		return 0
	}
}
