package x86_test

import (
	"testing"

	"github.com/emu86rv/emu86rv/pkg/bus"
	"github.com/emu86rv/emu86rv/pkg/cpustate"
	"github.com/emu86rv/emu86rv/pkg/memio"
	"github.com/emu86rv/emu86rv/pkg/vga"
	"github.com/emu86rv/emu86rv/pkg/uart"
	"github.com/emu86rv/emu86rv/pkg/x86"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(program []byte) (*bus.Bus, *memio.Ram) {
	ram := memio.NewRam(bus.X86MemorySize)
	_ = ram.FillAt(program, 0)
	b := bus.NewX86Bus(ram, vga.New(), uart.NewStdout(nil))
	return b, ram
}

func TestMovIncHalt(t *testing.T) {
	program := []byte{
		0xb8, 0x00, 0x00, 0x00, 0x00, // mov eax, 0
		0x48, 0xff, 0xc0, // inc rax
		0xf4, // hlt
	}
	b, _ := newTestBus(program)
	cpu := x86.New(b, 0)
	require.NoError(t, cpu.Run(nil))
	assert.Equal(t, uint64(9), cpu.PC)
	assert.Equal(t, uint64(1), cpu.Regs.Read(x86.Rax))
	assert.Equal(t, cpustate.Halted, cpu.State())
}

func TestMov32(t *testing.T) {
	program := []byte{0xb8, 0x00, 0x00, 0x00, 0x00, 0xf4}
	b, _ := newTestBus(program)
	cpu := x86.New(b, 0)
	require.NoError(t, cpu.Run(nil))
	assert.Equal(t, uint64(0), cpu.Regs.Read(x86.Rax))
}

func TestAdd(t *testing.T) {
	program := []byte{0x48, 0x01, 0xc8, 0xf4} // add rax, rcx ; hlt
	b, _ := newTestBus(program)
	cpu := x86.New(b, 0)
	cpu.Regs.Write(x86.Rax, 1)
	cpu.Regs.Write(x86.Rcx, 2)
	require.NoError(t, cpu.Run(nil))
	assert.Equal(t, uint64(3), cpu.Regs.Read(x86.Rax))
}

func TestJmpShort(t *testing.T) {
	program := []byte{0xeb, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf4}
	b, _ := newTestBus(program)
	cpu := x86.New(b, 0)
	require.NoError(t, cpu.Run(nil))
	assert.Equal(t, uint64(8), cpu.PC)
}

func TestLoadStore(t *testing.T) {
	// mov [rax], rbx ; mov rcx, [rax] ; hlt
	program := []byte{0x48, 0x89, 0x18, 0x48, 0x8b, 0x08, 0xf4}
	b, ram := newTestBus(program)
	cpu := x86.New(b, 0)
	cpu.Regs.Write(x86.Rax, 100)
	cpu.Regs.Write(x86.Rbx, 1)
	require.NoError(t, cpu.Run(nil))
	v, err := memio.ReadU64(ram, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, uint64(1), cpu.Regs.Read(x86.Rcx))
}

func TestCallRetRoundTrip(t *testing.T) {
	// call +1 ; hlt ; ret
	// call target = nextPC(5) + rel32(1) = 6, which is the ret; the ret
	// pops the pushed return address 5 and lands on the hlt.
	program := []byte{
		0xe8, 0x01, 0x00, 0x00, 0x00, // call rel32=1 -> target = 5+1 = 6
		0xf4,       // 5: hlt (return lands here)
		0xc3,       // 6: ret
	}
	b, ram := newTestBus(program)
	cpu := x86.New(b, 0)
	cpu.Regs.Write(x86.Rsp, uint64(bus.X86MemorySize))
	require.NoError(t, cpu.Run(nil))
	assert.Equal(t, uint64(6), cpu.PC) // hlt's own pc+1 after fetch = 6
	_ = ram
}

func TestPushPop(t *testing.T) {
	// push rax ; pop rcx ; hlt
	program := []byte{0x50, 0x59, 0xf4}
	b, _ := newTestBus(program)
	cpu := x86.New(b, 0)
	cpu.Regs.Write(x86.Rsp, uint64(bus.X86MemorySize))
	cpu.Regs.Write(x86.Rax, 42)
	require.NoError(t, cpu.Run(nil))
	assert.Equal(t, uint64(42), cpu.Regs.Read(x86.Rcx))
}

func TestSixteenBitStoreWithOperandOverride(t *testing.T) {
	// 66 c7 04 25 00 01 00 00 48 0e : mov word ptr [0x100], 0x0e48 ; hlt
	// ModR/M 0x04 (mod=00, reg=000, rm=100=RSP) forces a SIB byte; SIB
	// 0x25 (base field 0b101) with mod==00 means disp32-only addressing,
	// so the store address is the absolute displacement 0x100, not a
	// register-relative one.
	program := []byte{0x66, 0xc7, 0x04, 0x25, 0x00, 0x01, 0x00, 0x00, 0x48, 0x0e, 0xf4}
	b, ram := newTestBus(program)
	cpu := x86.New(b, 0)
	require.NoError(t, cpu.Run(nil))
	v, err := memio.ReadU16(ram, 0x100)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0e48), v)
}

func TestUndefinedOpcodeAborts(t *testing.T) {
	b, _ := newTestBus([]byte{0x0f, 0x0f, 0x0f})
	cpu := x86.New(b, 0)
	assert.Error(t, cpu.Run(nil))
}
