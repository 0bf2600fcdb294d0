package bf

import (
	"bufio"
	"io"
)

// Interpreter is the reference oracle: it acts directly on the unfiltered
// source, inspecting one byte at a time and skipping anything that isn't
// one of the eight opcodes. It exists to define canonical semantics and to
// let the VM and JIT be checked against it for identical input/output
// pairs; it is not meant to be fast.
type Interpreter struct {
	source []byte
	ip     int
	tape   [TapeSize]byte
	dp     int
	reader io.Reader
	writer *bufio.Writer
}

// NewInterpreter creates an Interpreter over raw source text. r supplies
// the bytes consumed by Read opcodes; w receives the bytes produced by
// Write opcodes.
func NewInterpreter(source string, r io.Reader, w *bufio.Writer) *Interpreter {
	return &Interpreter{
		source: []byte(source),
		reader: r,
		writer: w,
	}
}

// Tape returns the interpreter's tape, for tests that inspect final state.
func (in *Interpreter) Tape() [TapeSize]byte {
	return in.tape
}

// Run executes the source from the beginning under the given flush policy.
func (in *Interpreter) Run(flush FlushBehavior) error {
	for in.ip < len(in.source) {
		switch Opcode(in.source[in.ip]) {
		case OpAdvanceDP:
			in.dp++
			if in.dp >= TapeSize {
				return &TapeFault{DP: in.dp}
			}
		case OpRetreatDP:
			if in.dp == 0 {
				return &TapeFault{DP: -1}
			}
			in.dp--
		case OpIncCell:
			in.tape[in.dp]++
		case OpDecCell:
			in.tape[in.dp]--
		case OpRead:
			if err := readByte(in.reader, in.tape[in.dp:in.dp+1]); err != nil {
				return err
			}
		case OpWrite:
			if err := writeByte(in.writer, in.tape[in.dp], flush); err != nil {
				return err
			}
		case OpLoopBegin:
			if in.tape[in.dp] == 0 {
				in.skipForward()
			}
		case OpLoopEnd:
			if in.tape[in.dp] != 0 {
				in.skipBackward()
			}
		}
		in.ip++
	}

	return flushAtEnd(in.writer, flush)
}

// skipForward advances ip to the matching LoopEnd, via a balanced bracket
// scan over the raw source bytes. The caller's ip += 1 at the bottom of Run
// then lands it on the instruction following that LoopEnd.
func (in *Interpreter) skipForward() {
	balance := 0
	for {
		switch Opcode(in.source[in.ip]) {
		case OpLoopBegin:
			balance++
		case OpLoopEnd:
			balance--
		}
		if balance == 0 {
			break
		}
		in.ip++
	}
}

// skipBackward retreats ip to the matching LoopBegin, via a balanced
// bracket scan over the raw source bytes. The caller's ip += 1 at the
// bottom of Run then lands it one past the opener, matching LoopEnd's
// documented semantics.
func (in *Interpreter) skipBackward() {
	balance := 0
	for {
		switch Opcode(in.source[in.ip]) {
		case OpLoopBegin:
			balance--
		case OpLoopEnd:
			balance++
		}
		if balance == 0 {
			break
		}
		in.ip--
	}
}
