// Command bf runs Brainfuck-family programs on one of three backends: the
// tree-walking reference interpreter, the folded-bytecode virtual machine,
// or (on amd64/linux) the native JIT.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"brainfuck/bf"
	"brainfuck/bf/jit"
	"brainfuck/internal/hostconfig"
)

// Exit codes line up with the error taxonomy in bf/compile.go and
// bf/devices.go: 0 is
// success, and each fault kind gets its own non-zero code so a caller
// scripting this binary can distinguish them without parsing stderr.
const (
	exitOK = iota
	exitCompileError
	exitTapeFault
	exitIOFault
	exitHostFault
	exitUsage
)

var diag = log.New(os.Stderr, "", 0)

func main() {
	defaults, err := hostconfig.Load()
	if err != nil {
		diag.Printf("bf: reading environment defaults: %v", err)
		defaults = hostconfig.Defaults{Backend: "jit", Flush: "onend"}
	}

	app := &cli.App{
		Name:      "bf",
		Usage:     "run a Brainfuck-family program",
		ArgsUsage: "program-file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Value: defaults.Backend,
				Usage: "execution backend: interpreter, vm, or jit",
			},
			&cli.StringFlag{
				Name:  "flush",
				Value: defaults.Flush,
				Usage: "output flush policy: disabled, onwrite, or onend",
			},
			&cli.StringFlag{
				Name:  "input",
				Usage: "file supplying the program's input stream (defaults to stdin)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print backend/flush selection and a source size estimate to stderr before running",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		diag.Printf("bf: %v", err)
		os.Exit(exitUsage)
	}
}

func run(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("bf: missing program file", exitUsage)
	}

	source, err := bf.LoadSource(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitUsage)
	}

	backend, err := bf.ParseBackend(c.String("backend"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitUsage)
	}

	flush, err := bf.ParseFlushBehavior(c.String("flush"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitUsage)
	}

	input, closeInput, err := openInput(c.String("input"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitUsage)
	}
	defer closeInput()

	if backend == bf.BackendJIT && !jit.Supported() {
		diag.Printf("bf: jit unsupported on this platform, falling back to %s", bf.BackendVM)
		backend = bf.BackendVM
	}

	if c.Bool("verbose") {
		diag.Printf("bf: backend=%s flush=%s opcodes=%d", backend, flush, bf.CountOpcodes(source))
	}

	switch backend {
	case bf.BackendInterpreter:
		err = bf.RunInterpreter(source, input, os.Stdout, flush)
	case bf.BackendVM:
		err = bf.RunVM(source, input, os.Stdout, flush)
	case bf.BackendJIT:
		err = runJIT(source, input)
	}

	return mapError(err)
}

// runJIT compiles source and hands the program to the native backend. The
// JIT talks to file descriptors 0 and 1 directly via syscalls (see
// bf/jit/asm_amd64.go), so a non-stdin input stream must be wired onto fd 0
// before the generated code runs.
func runJIT(source string, input io.Reader) error {
	prog, err := bf.CompileSource(source)
	if err != nil {
		return err
	}

	restore, err := dupOntoStdin(input)
	if err != nil {
		return &bf.HostFault{Err: err}
	}
	defer restore()

	return jit.Run(prog)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var compileErr *bf.CompileError
	var tapeFault *bf.TapeFault
	var ioFault *bf.IOFault
	var hostFault *bf.HostFault

	switch {
	case errors.As(err, &compileErr):
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitCompileError)
	case errors.As(err, &tapeFault):
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitTapeFault)
	case errors.As(err, &ioFault):
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitIOFault)
	case errors.As(err, &hostFault):
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitHostFault)
	default:
		return cli.Exit(fmt.Sprintf("bf: %v", err), exitUsage)
	}
}
