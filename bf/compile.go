package bf

import "fmt"

// CompileError reports a bracket mismatch found while resolving jump
// offsets. Compilation is abandoned the moment one is detected.
type CompileError struct {
	Msg string
}

func (e *CompileError) Error() string {
	return e.Msg
}

// Filter scans source and returns the recognized opcode bytes in order,
// discarding everything else: whitespace, comments, multi-byte sequences,
// and any byte that isn't one of the eight opcodes. Filter is total (it
// never fails) and idempotent: filtering its own output changes nothing,
// since its output already contains only opcode bytes.
func Filter(source string) []Opcode {
	out := make([]Opcode, 0, len(source))
	for i := 0; i < len(source); i++ {
		b := source[i]
		if isOpcode(b) {
			out = append(out, Opcode(b))
		}
	}
	return out
}

// Compile folds a filtered opcode stream into a bytecode Program and
// resolves the relative jump offset of every matched bracket pair.
//
// Three phases, run in order:
//
//  1. fold groups maximal runs of identical arithmetic/pointer opcodes into
//     single instructions and emits one placeholder jump per bracket.
//  2. linkForward resolves every JumpIfZero placeholder by a balanced scan.
//  3. linkBackward resolves the matching JumpIfNotZero from each resolved
//     JumpIfZero.
//
// The same opcode stream always compiles to the same Program.
func Compile(ops []Opcode) (Program, error) {
	prog := fold(ops)
	if err := linkForward(prog); err != nil {
		return nil, err
	}
	if err := linkBackward(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// CompileSource is a convenience wrapper over Filter followed by Compile.
func CompileSource(source string) (Program, error) {
	return Compile(Filter(source))
}

func fold(ops []Opcode) Program {
	prog := make(Program, 0, len(ops))
	i := 0
	for i < len(ops) {
		switch ops[i] {
		case OpAdvanceDP:
			n := runLength(ops, i)
			prog = append(prog, Instruction{Kind: IncDP, N: n})
			i += n
		case OpRetreatDP:
			n := runLength(ops, i)
			prog = append(prog, Instruction{Kind: DecDP, N: n})
			i += n
		case OpIncCell:
			n := runLength(ops, i)
			prog = append(prog, Instruction{Kind: AddCell, N: n})
			i += n
		case OpDecCell:
			n := runLength(ops, i)
			prog = append(prog, Instruction{Kind: SubCell, N: n})
			i += n
		case OpWrite:
			prog = append(prog, Instruction{Kind: Write})
			i++
		case OpRead:
			prog = append(prog, Instruction{Kind: Read})
			i++
		case OpLoopBegin:
			prog = append(prog, Instruction{Kind: JumpIfZero, N: unresolved})
			i++
		case OpLoopEnd:
			prog = append(prog, Instruction{Kind: JumpIfNotZero, N: unresolved})
			i++
		}
	}
	return prog
}

// runLength reports the length of the maximal run of opcodes identical to
// ops[i], starting at i.
func runLength(ops []Opcode, i int) int {
	op := ops[i]
	n := 0
	for i+n < len(ops) && ops[i+n] == op {
		n++
	}
	return n
}

// linkForward resolves every JumpIfZero placeholder by walking forward from
// it with a balance counter, +1 per JumpIfZero and -1 per JumpIfNotZero,
// until the counter returns to zero. The index at which that happens holds
// the matching JumpIfNotZero placeholder.
func linkForward(prog Program) error {
	for i := range prog {
		if prog[i].Kind != JumpIfZero || prog[i].N != unresolved {
			continue
		}

		balance := 0
		j := i
		for {
			if j >= len(prog) {
				return &CompileError{Msg: "unmatched LoopBegin"}
			}
			switch prog[j].Kind {
			case JumpIfZero:
				balance++
			case JumpIfNotZero:
				balance--
			}
			if balance == 0 {
				break
			}
			j++
		}

		prog[i].N = j - i + 1
	}
	return nil
}

// linkBackward resolves the JumpIfNotZero partner of every now-resolved
// JumpIfZero, then checks that no JumpIfNotZero placeholder is left
// dangling (a surplus closing bracket never reached by linkForward).
func linkBackward(prog Program) error {
	for i := range prog {
		if prog[i].Kind != JumpIfZero {
			continue
		}

		partner := i + prog[i].N - 1
		if partner < 0 || partner >= len(prog) || prog[partner].Kind != JumpIfNotZero || prog[partner].N != unresolved {
			return &CompileError{Msg: fmt.Sprintf("malformed bracket pair starting at instruction %d", i)}
		}

		prog[partner].N = partner - i - 1
	}

	for i := range prog {
		if prog[i].Kind == JumpIfNotZero && prog[i].N == unresolved {
			return &CompileError{Msg: "unmatched LoopEnd"}
		}
	}
	return nil
}
