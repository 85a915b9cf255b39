package riscv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestHart() *Hart {
	return NewHart(newTestBus())
}

func TestSIEMaskedByMideleg(t *testing.T) {
	h := newTestHart()
	h.writecsr(MIDELEG, MIPSSIP|MIPSTIP)
	h.writecsr(SIE, MIPSSIP|MIPSTIP|MIPSEIP)
	// SEIP was not delegated, so it must not stick in mie via the sie alias.
	assert.Equal(t, uint64(MIPSSIP|MIPSTIP), h.readcsr(SIE))
	assert.Equal(t, uint64(MIPSSIP|MIPSTIP), h.csr[MIE]&(MIPSSIP|MIPSTIP|MIPSEIP))
}

func TestSIPMaskedByMideleg(t *testing.T) {
	h := newTestHart()
	h.writecsr(MIDELEG, MIPSTIP)
	h.writecsr(SIP, MIPSTIP|MIPSSIP)
	assert.Equal(t, uint64(MIPSTIP), h.readcsr(SIP))
}

func TestSstatusMaskedView(t *testing.T) {
	h := newTestHart()
	h.writecsr(MSTATUS, ^uint64(0))
	assert.Equal(t, uint64(^uint64(0))&sstatusMask, h.readcsr(SSTATUS))
}

func TestSatpModeSwitch(t *testing.T) {
	h := newTestHart()
	assert.Equal(t, Bare, h.mode)
	h.writecsr(SATP, uint64(SV39)<<60)
	assert.Equal(t, SV39, h.mode)
	// paging_on is a pure function of the latest satp write: any top
	// nibble other than 8 collapses back to bare/identity, even a
	// previously-valid Sv39 hart switching away.
	h.writecsr(SATP, uint64(3)<<60)
	assert.Equal(t, Bare, h.mode)
}

func TestMideligWriteMaskedToDelegableBits(t *testing.T) {
	h := newTestHart()
	h.writecsr(MIDELEG, ^uint64(0))
	assert.Equal(t, uint64(sDelegMask), h.csr[MIDELEG])
}

func TestX0AlwaysZero(t *testing.T) {
	h := newTestHart()
	// addi x0, x0, 5 -- any write targeting x0 must not stick.
	h.bus.Store(RAMBase, 32, 0x00500013)
	assert.NoError(t, h.Step())
	assert.Equal(t, int64(0), h.x[0])
}
