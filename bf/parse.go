package bf

import (
	"fmt"
	"os"
)

// LoadSource reads a program file from disk and returns its raw contents.
// It does not filter or compile; callers pass the result to Filter/Compile
// or to NewInterpreter directly.
func LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// CountOpcodes reports how many bytes in source are one of the eight
// recognized opcodes, useful for a quick size estimate before compiling
// (e.g. diagnostics printed by the host on --verbose).
func CountOpcodes(source string) int {
	n := 0
	for i := 0; i < len(source); i++ {
		if isOpcode(source[i]) {
			n++
		}
	}
	return n
}
