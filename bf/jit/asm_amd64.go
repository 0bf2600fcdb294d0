//go:build amd64 && linux

package jit

import "encoding/binary"

// jumpInstrLen is the fixed byte length of the cmp+je/jne sequence emitted
// by emitJumpIfZero/emitJumpIfNotZero: 5 bytes for "cmp byte ptr [r12], 0"
// plus 2 bytes of opcode and 4 bytes of rel32 displacement for the jump
// itself.
const jumpInstrLen = 11

// assembler accumulates a native code buffer. Every emit* method can run in
// two modes: normal (appends to buf) and measuring (returns the byte count
// it would have appended, without touching buf). The two-pass jump
// resolver in compile_amd64.go relies on measuring mode to size
// not-yet-emitted instructions before it can compute a jump displacement.
type assembler struct {
	buf      []byte
	measured bool
}

func (a *assembler) write(b []byte) int {
	if !a.measured {
		a.buf = append(a.buf, b...)
	}
	return len(b)
}

// measure runs emit with measuring mode enabled and returns the byte count
// it reports, leaving buf untouched regardless of emit's own checks.
func (a *assembler) measure(emit func() int) int {
	saved := a.measured
	a.measured = true
	n := emit()
	a.measured = saved
	return n
}

// emitPrologue saves callee-saved state and loads the pinned data-pointer
// register r12 with the tape's absolute address:
//
//	push rbp
//	push r12
//	movabs r12, imm64 tapeAddr
//	mov rbp, rsp
func (a *assembler) emitPrologue(tapeAddr uint64) int {
	var addr [8]byte
	binary.LittleEndian.PutUint64(addr[:], tapeAddr)
	return a.write([]byte{
		0x55,
		0x41, 0x54,
		0x49, 0xbc, addr[0], addr[1], addr[2], addr[3], addr[4], addr[5], addr[6], addr[7],
		0x48, 0x89, 0xe5,
	})
}

// emitEpilogue restores callee-saved state and returns:
//
//	mov rsp, rbp
//	pop r12
//	pop rbp
//	ret
func (a *assembler) emitEpilogue() int {
	return a.write([]byte{0x48, 0x89, 0xec, 0x41, 0x5c, 0x5d, 0xc3})
}

// emitIncDP advances the pinned pointer register by n. n is the raw,
// unfolded pointer displacement (not reduced mod anything): a 1-byte
// inc for n == 1, an 8-bit-immediate add for 2 <= n <= 127, and a
// 32-bit-immediate add otherwise (tape offsets run up to 29999, well
// inside int32 range).
func (a *assembler) emitIncDP(n int) int {
	switch {
	case n == 1:
		return a.write([]byte{0x49, 0xff, 0xc4}) // inc r12
	case n >= 2 && n <= 127:
		return a.write([]byte{0x49, 0x83, 0xc4, byte(n)}) // add r12, imm8
	default:
		var imm [4]byte
		binary.LittleEndian.PutUint32(imm[:], uint32(n))
		return a.write([]byte{0x49, 0x81, 0xc4, imm[0], imm[1], imm[2], imm[3]}) // add r12, imm32
	}
}

// emitDecDP is emitIncDP's mirror image for the pointer-retreat direction.
func (a *assembler) emitDecDP(n int) int {
	switch {
	case n == 1:
		return a.write([]byte{0x49, 0xff, 0xcc}) // dec r12
	case n >= 2 && n <= 127:
		return a.write([]byte{0x49, 0x83, 0xec, byte(n)}) // sub r12, imm8
	default:
		var imm [4]byte
		binary.LittleEndian.PutUint32(imm[:], uint32(n))
		return a.write([]byte{0x49, 0x81, 0xec, imm[0], imm[1], imm[2], imm[3]}) // sub r12, imm32
	}
}

// emitAddCell adds n, reduced mod 256, to the byte at [r12]. Unlike pointer
// arithmetic, the target is a single memory byte, so only an 8-bit
// immediate form exists; a reduced delta of 0 (n a multiple of 256) emits
// nothing, since the net effect on the cell is a no-op.
func (a *assembler) emitAddCell(n int) int {
	d := byte(n)
	switch {
	case d == 0:
		return 0
	case d == 1:
		return a.write([]byte{0x41, 0xfe, 0x04, 0x24}) // inc byte ptr [r12]
	default:
		return a.write([]byte{0x41, 0x80, 0x04, 0x24, d}) // add byte ptr [r12], imm8
	}
}

// emitSubCell is emitAddCell's mirror image for the decrement direction.
func (a *assembler) emitSubCell(n int) int {
	d := byte(n)
	switch {
	case d == 0:
		return 0
	case d == 1:
		return a.write([]byte{0x41, 0xfe, 0x0c, 0x24}) // dec byte ptr [r12]
	default:
		return a.write([]byte{0x41, 0x80, 0x2c, 0x24, d}) // sub byte ptr [r12], imm8
	}
}

// emitWrite is the 20-byte write(1, r12, 1) sequence, unrolled n times
// (Write is never folded by the compiler, so n is always 1 in practice;
// the loop exists so a folded variant would cost nothing extra to add).
func (a *assembler) emitWrite(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += a.write([]byte{
			0xb8, 0x01, 0x00, 0x00, 0x00, // mov eax, 1  (SYS_write)
			0xbf, 0x01, 0x00, 0x00, 0x00, // mov edi, 1  (fd 1, stdout)
			0x4c, 0x89, 0xe6, //             mov rsi, r12
			0xba, 0x01, 0x00, 0x00, 0x00, // mov edx, 1  (count)
			0x0f, 0x05, //                   syscall
		})
	}
	return total
}

// emitRead is the 20-byte read(0, r12, 1) sequence.
func (a *assembler) emitRead() int {
	return a.write([]byte{
		0xb8, 0x00, 0x00, 0x00, 0x00, // mov eax, 0  (SYS_read)
		0xbf, 0x00, 0x00, 0x00, 0x00, // mov edi, 0  (fd 0, stdin)
		0x4c, 0x89, 0xe6, //             mov rsi, r12
		0xba, 0x01, 0x00, 0x00, 0x00, // mov edx, 1  (count)
		0x0f, 0x05, //                   syscall
	})
}

// emitJumpIfZero is "cmp byte ptr [r12], 0; je rel32", disp bytes forward.
func (a *assembler) emitJumpIfZero(disp int32) int {
	var d [4]byte
	binary.LittleEndian.PutUint32(d[:], uint32(disp))
	return a.write([]byte{0x41, 0x80, 0x3c, 0x24, 0x00, 0x0f, 0x84, d[0], d[1], d[2], d[3]})
}

// emitJumpIfNotZero is "cmp byte ptr [r12], 0; jne rel32", disp bytes
// (usually negative, jumping backward).
func (a *assembler) emitJumpIfNotZero(disp int32) int {
	var d [4]byte
	binary.LittleEndian.PutUint32(d[:], uint32(disp))
	return a.write([]byte{0x41, 0x80, 0x3c, 0x24, 0x00, 0x0f, 0x85, d[0], d[1], d[2], d[3]})
}
