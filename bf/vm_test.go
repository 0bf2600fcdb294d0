package bf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// assert is the teacher's plain testing.T helper, kept for the tests ported
// directly from that style (vs. the newer scenario tests below, which use
// testify).
func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestFilterDropsComments(t *testing.T) {
	ops := Filter("he+ll>o[.]wor<ld-,")
	assert(t, len(ops) == 8, "expected 8 opcodes, got %d", len(ops))

	again := Filter(string(opsToBytes(ops)))
	assert(t, string(opsToBytes(ops)) == string(opsToBytes(again)), "filter is not idempotent")
}

func opsToBytes(ops []Opcode) []byte {
	b := make([]byte, len(ops))
	for i, o := range ops {
		b[i] = byte(o)
	}
	return b
}

func TestFoldingProducesOneInstructionPerRun(t *testing.T) {
	for _, k := range []int{1, 5, 255, 256, 300} {
		prog, err := CompileSource(strings.Repeat("+", k))
		assert(t, err == nil, "compile failed: %v", err)
		assert(t, len(prog) == 1, "expected 1 instruction for run of %d, got %d", k, len(prog))
		assert(t, prog[0].Kind == AddCell, "expected AddCell, got %s", prog[0].Kind)
		assert(t, prog[0].N == k, "expected count %d, got %d", k, prog[0].N)
	}
}

func TestUnmatchedBrackets(t *testing.T) {
	_, err := CompileSource("]")
	assert(t, err != nil, "expected error for unmatched LoopEnd")

	_, err = CompileSource("[")
	assert(t, err != nil, "expected error for unmatched LoopBegin")
}

func TestBracketPairing(t *testing.T) {
	prog, err := CompileSource("+[->+<]")
	assert(t, err == nil, "compile failed: %v", err)

	for i, instr := range prog {
		if instr.Kind != JumpIfZero {
			continue
		}
		partner := i + instr.N - 1
		assert(t, prog[partner].Kind == JumpIfNotZero, "partner of JumpIfZero at %d is not JumpIfNotZero", i)
		assert(t, prog[partner].N == instr.N-2, "offsets inconsistent: %d vs %d", prog[partner].N, instr.N-2)
	}
}

func TestEmptyLoopOffsets(t *testing.T) {
	prog, err := CompileSource("[]")
	assert(t, err == nil, "compile failed: %v", err)
	assert(t, len(prog) == 2, "expected 2 instructions, got %d", len(prog))
	assert(t, prog[0].N == 2, "expected JumpIfZero offset 2, got %d", prog[0].N)
	assert(t, prog[1].N == 0, "expected JumpIfNotZero offset 0, got %d", prog[1].N)
}

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func TestInterpreterHelloWorld(t *testing.T) {
	require := require.New(t)

	var out bytes.Buffer
	in := NewInterpreter(helloWorld, strings.NewReader(""), NewWriter(&out))
	err := in.Run(FlushOnEnd)
	require.NoError(err)
	require.Equal("Hello World!\n", out.String())
}

func TestVMHelloWorld(t *testing.T) {
	require := require.New(t)

	prog, err := CompileSource(helloWorld)
	require.NoError(err)

	var out bytes.Buffer
	vm := NewVM(prog, strings.NewReader(""), NewWriter(&out))
	require.NoError(vm.Run(FlushOnEnd))
	require.Equal("Hello World!\n", out.String())
}

func TestInterpreterAndVMAgree(t *testing.T) {
	require := require.New(t)

	cases := []struct {
		name   string
		source string
		input  string
	}{
		{"hello world", helloWorld, ""},
		{"echo three bytes", ",.,.,.", "ABC"},
		{"scaled add", "++>+++<[->+<]", ""},
	}

	for _, c := range cases {
		var interpOut, vmOut bytes.Buffer

		in := NewInterpreter(c.source, strings.NewReader(c.input), NewWriter(&interpOut))
		require.NoError(in.Run(FlushOnEnd), c.name)

		prog, err := CompileSource(c.source)
		require.NoError(err, c.name)
		vm := NewVM(prog, strings.NewReader(c.input), NewWriter(&vmOut))
		require.NoError(vm.Run(FlushOnEnd), c.name)

		require.Equal(interpOut.String(), vmOut.String(), c.name)
	}
}

func TestScaledAddFinalTape(t *testing.T) {
	require := require.New(t)

	prog, err := CompileSource("++>+++<[->+<]")
	require.NoError(err)

	var out bytes.Buffer
	vm := NewVM(prog, strings.NewReader(""), NewWriter(&out))
	require.NoError(vm.Run(FlushOnEnd))

	tape := vm.Tape()
	require.EqualValues(0, tape[0])
	require.EqualValues(5, tape[1])
}

func TestEchoThreeBytes(t *testing.T) {
	require := require.New(t)

	prog, err := CompileSource(",.,.,.")
	require.NoError(err)

	var out bytes.Buffer
	vm := NewVM(prog, bytes.NewReader([]byte{0x41, 0x42, 0x43}), NewWriter(&out))
	require.NoError(vm.Run(FlushOnEnd))
	require.Equal([]byte{0x41, 0x42, 0x43}, out.Bytes())
}

func TestTapeSizeBoundary(t *testing.T) {
	require := require.New(t)

	prog, err := CompileSource(strings.Repeat(">", 29999))
	require.NoError(err)
	vm := NewVM(prog, strings.NewReader(""), NewWriter(&bytes.Buffer{}))
	require.NoError(vm.Run(FlushDisabled))

	prog, err = CompileSource(strings.Repeat(">", 30000))
	require.NoError(err)
	vm = NewVM(prog, strings.NewReader(""), NewWriter(&bytes.Buffer{}))
	err = vm.Run(FlushDisabled)
	require.Error(err)
	var fault *TapeFault
	require.ErrorAs(err, &fault)
}

func TestCellWrapping(t *testing.T) {
	require := require.New(t)

	prog, err := CompileSource("-")
	require.NoError(err)
	vm := NewVM(prog, strings.NewReader(""), NewWriter(&bytes.Buffer{}))
	require.NoError(vm.Run(FlushDisabled))
	require.EqualValues(255, vm.Tape()[0])

	prog, err = CompileSource(strings.Repeat("+", 256))
	require.NoError(err)
	vm = NewVM(prog, strings.NewReader(""), NewWriter(&bytes.Buffer{}))
	require.NoError(vm.Run(FlushDisabled))
	require.EqualValues(0, vm.Tape()[0])
}

func TestReadPastEndOfInputIsIOFault(t *testing.T) {
	require := require.New(t)

	prog, err := CompileSource(",")
	require.NoError(err)
	vm := NewVM(prog, strings.NewReader(""), NewWriter(&bytes.Buffer{}))
	err = vm.Run(FlushDisabled)
	require.Error(err)
	var fault *IOFault
	require.ErrorAs(err, &fault)
}
