//go:build amd64 && linux

package main

import (
	"flag"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const helloWorldPath = "../../testdata/hello_world.bf"

// captureStdout swaps the package-level os.Stdout for the duration of fn,
// for backends (interpreter, vm) that write through the io.Writer passed to
// them rather than issuing raw syscalls.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	saved := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = saved

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(out)
}

// captureStdoutFD redirects fd 1 itself for the duration of fn, for the JIT
// backend, which writes via a syscall directly against the process's real
// stdout descriptor and never touches the os.Stdout variable.
func captureStdoutFD(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	saved, err := syscall.Dup(int(os.Stdout.Fd()))
	require.NoError(t, err)
	require.NoError(t, syscall.Dup2(int(w.Fd()), int(os.Stdout.Fd())))

	fn()

	require.NoError(t, syscall.Dup2(saved, int(os.Stdout.Fd())))
	require.NoError(t, syscall.Close(saved))
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(out)
}

func newTestContext(t *testing.T, backend string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("bf", flag.ContinueOnError)
	set.String("backend", backend, "")
	set.String("flush", "onend", "")
	set.String("input", "", "")
	set.Bool("verbose", true, "")
	require.NoError(t, set.Parse([]string{helloWorldPath}))

	return cli.NewContext(&cli.App{Name: "bf"}, set, nil)
}

func TestRunInterpreterBackendEndToEnd(t *testing.T) {
	require := require.New(t)
	c := newTestContext(t, "interpreter")

	var err error
	out := captureStdout(t, func() { err = run(c) })
	require.NoError(err)
	require.Equal("Hello World!\n", out)
}

func TestRunVMBackendEndToEnd(t *testing.T) {
	require := require.New(t)
	c := newTestContext(t, "vm")

	var err error
	out := captureStdout(t, func() { err = run(c) })
	require.NoError(err)
	require.Equal("Hello World!\n", out)
}

func TestRunJITBackendEndToEnd(t *testing.T) {
	require := require.New(t)
	c := newTestContext(t, "jit")

	var err error
	out := captureStdoutFD(t, func() { err = run(c) })
	require.NoError(err)
	require.Equal("Hello World!\n", out)
}
