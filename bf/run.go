package bf

import (
	"fmt"
	"io"
)

// Backend names one of the three execution engines a host can select.
// The JIT itself lives in the jit subpackage to keep this package free of
// platform build tags; Backend only names the choice, it doesn't implement
// JIT dispatch (see cmd/bf for the host that does).
type Backend int

const (
	BackendInterpreter Backend = iota
	BackendVM
	BackendJIT
)

func (b Backend) String() string {
	switch b {
	case BackendInterpreter:
		return "interpreter"
	case BackendVM:
		return "vm"
	case BackendJIT:
		return "jit"
	default:
		return "unknown"
	}
}

// ParseBackend maps the CLI/environment spelling of a backend name to its
// Backend value.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "interpreter":
		return BackendInterpreter, nil
	case "vm":
		return BackendVM, nil
	case "jit":
		return BackendJIT, nil
	default:
		return 0, fmt.Errorf("unknown backend: %q", s)
	}
}

// RunInterpreter compiles nothing: it runs source directly against the
// reference oracle.
func RunInterpreter(source string, r io.Reader, w io.Writer, flush FlushBehavior) error {
	bw := NewWriter(w)
	return NewInterpreter(source, r, bw).Run(flush)
}

// RunVM compiles source to bytecode and runs it on the folded-instruction
// virtual machine.
func RunVM(source string, r io.Reader, w io.Writer, flush FlushBehavior) error {
	prog, err := CompileSource(source)
	if err != nil {
		return err
	}
	bw := NewWriter(w)
	return NewVM(prog, r, bw).Run(flush)
}
