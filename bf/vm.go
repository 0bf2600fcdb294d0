package bf

import (
	"bufio"
	"io"
)

// VM executes a compiled Program. Unlike Interpreter it dispatches once per
// folded instruction rather than once per source byte, and follows
// precomputed relative jump offsets instead of rescanning brackets.
type VM struct {
	prog   Program
	ip     int
	tape   [TapeSize]byte
	dp     int
	reader io.Reader
	writer *bufio.Writer
}

// NewVM creates a VM over a compiled Program. r supplies the bytes consumed
// by Read instructions; w receives the bytes produced by Write
// instructions.
func NewVM(prog Program, r io.Reader, w *bufio.Writer) *VM {
	return &VM{
		prog:   prog,
		reader: r,
		writer: w,
	}
}

// Tape returns the VM's tape, for tests that inspect final state.
func (vm *VM) Tape() [TapeSize]byte {
	return vm.tape
}

// Run executes the program from the beginning under the given flush
// policy.
func (vm *VM) Run(flush FlushBehavior) error {
	for vm.ip < len(vm.prog) {
		instr := vm.prog[vm.ip]

		switch instr.Kind {
		case IncDP:
			vm.dp += instr.N
			if vm.dp >= TapeSize {
				return &TapeFault{DP: vm.dp}
			}
		case DecDP:
			if vm.dp < instr.N {
				return &TapeFault{DP: vm.dp - instr.N}
			}
			vm.dp -= instr.N
		case AddCell:
			vm.tape[vm.dp] += byte(instr.N)
		case SubCell:
			vm.tape[vm.dp] -= byte(instr.N)
		case Write:
			if err := writeByte(vm.writer, vm.tape[vm.dp], flush); err != nil {
				return err
			}
		case Read:
			if err := readByte(vm.reader, vm.tape[vm.dp:vm.dp+1]); err != nil {
				return err
			}
		case JumpIfZero:
			if vm.tape[vm.dp] == 0 {
				vm.ip += instr.N
				continue
			}
		case JumpIfNotZero:
			if vm.tape[vm.dp] != 0 {
				vm.ip -= instr.N
				continue
			}
		}

		vm.ip++
	}

	return flushAtEnd(vm.writer, flush)
}
