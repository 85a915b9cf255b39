package riscv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerInterruptDeliveredWhenEnabled(t *testing.T) {
	h := newTestHart()
	h.priv = Machine
	h.writecsr(MSTATUS, 1<<3) // MIE=1
	h.writecsr(MIE, MIPMTIP)
	h.writecsr(MTVEC, RAMBase+0x500)
	h.bus.Clint.mtimeCmp = 10
	h.bus.Clint.mtime = 10

	h.pollInterrupts()

	assert.Equal(t, uint64(RAMBase+0x500), h.pc)
	assert.Equal(t, uint64(MachineTimerInterrupt)|1<<63, h.readcsr(MCAUSE))
}

func TestInterruptNotDeliveredWhenGloballyDisabled(t *testing.T) {
	h := newTestHart()
	h.priv = Machine
	h.writecsr(MSTATUS, 0) // MIE=0
	h.writecsr(MIE, MIPMTIP)
	h.bus.Clint.mtimeCmp = 10
	h.bus.Clint.mtime = 10
	startPC := h.pc

	h.pollInterrupts()

	assert.Equal(t, startPC, h.pc)
}

func TestUARTInterruptRaisesPlicClaim(t *testing.T) {
	h := newTestHart()
	h.priv = Machine
	h.writecsr(MSTATUS, 1<<3)
	h.writecsr(MIE, MIPSEIP)
	h.writecsr(MTVEC, RAMBase+0x600)
	h.bus.UART.PushByte('z')

	h.pollInterrupts()

	assert.Equal(t, uint32(UARTIRQ), h.bus.Plic.sclaim)
	assert.Equal(t, uint64(RAMBase+0x600), h.pc)
}

func TestDiskInterruptRunsDMAAndClaims(t *testing.T) {
	backing := make([]byte, DiskSectorSize)
	backing[0] = 0x42
	h := NewHart(NewBus(NewRAM(), NewUART(nil), NewDisk(backing), NewKeyboard()))
	h.priv = Machine
	h.writecsr(MSTATUS, 1<<3)
	h.writecsr(MIE, MIPSEIP)
	h.writecsr(MTVEC, RAMBase+0x700)

	h.bus.Disk.notify = 1
	h.bus.Disk.direction = 0
	h.bus.Disk.bufferAddressLow = RAMBase + 0x3000
	h.bus.Disk.bufferLengthLow = 1
	h.bus.Disk.sector = 0

	h.pollInterrupts()

	v, _, ok := h.bus.Load(RAMBase+0x3000, 8)
	require.True(t, ok)
	assert.Equal(t, uint64(0x42), v)
	assert.Equal(t, uint32(DiskIRQ), h.bus.Plic.sclaim)
	assert.Equal(t, uint64(RAMBase+0x700), h.pc)
}
