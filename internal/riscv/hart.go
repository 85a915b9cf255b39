// Package riscv implements a single RV64IMA+Zicsr hart with Sv39 paging and
// the small MMIO device set (CLINT, PLIC, UART, disk, keyboard) needed to
// boot an xv6-style kernel image.
package riscv

import (
	"fmt"
	"io"
)

// Hart is one RISC-V hardware thread: integer register file, CSR file,
// current privilege/addressing mode, and the bus it is wired to. Grounded
// on the teacher's CPU struct, stripped of the F-register file and
// compressed-instruction support (both out of scope) and carrying the
// redesigned CSR aliasing from SPEC_FULL §4.4.
type Hart struct {
	pc   uint64
	x    [32]int64
	csr  [4096]uint64
	priv Privilege
	mode AddressMode
	wfi  bool

	reservation    uint64
	reservationSet bool

	bus *Bus

	// Trace, when non-nil, receives one line per retired instruction in the
	// teacher's debug-trace format.
	Trace io.Writer

	count uint64
}

// NewHart creates a hart with the bus wired in, PC at the RAM base, and
// machine mode initial privilege, matching the original source's cpu_new
// (regs[2] set to the top of RAM for the stack pointer, pc at RAM_BASE,
// mode MACHINE).
func NewHart(bus *Bus) *Hart {
	h := &Hart{
		pc:   RAMBase,
		priv: Machine,
		bus:  bus,
	}
	h.x[2] = int64(RAMBase + RAMSize)
	h.writecsr(MISA, 0x800000008014312f)
	return h
}

// PC reports the hart's current program counter, for diagnostics.
func (h *Hart) PC() uint64 { return h.pc }

// Framebuffer returns the live RAM window the guest draws into, for the
// host to blit each frame. Grounded on the original source's
// draw_framebuffer, which blits straight out of bus->ram->data at the same
// offset.
func (h *Hart) Framebuffer() []byte {
	off := FramebufferBase - RAMBase
	n := FramebufferWidth * FramebufferHeight * 4
	return h.bus.RAM[off : off+n]
}

// PushUARTByte feeds one byte into the UART's receive register, blocking
// until the previous byte has been drained by the guest.
func (h *Hart) PushUARTByte(b byte) { h.bus.UART.PushByte(b) }

// PushScancode feeds one keyboard scancode into the keyboard's FIFO.
func (h *Hart) PushScancode(code uint32) { h.bus.Kbd.PushScancode(code) }

// Run steps the hart until step returns a fatal error.
func (h *Hart) Run() error {
	for {
		if err := h.Step(); err != nil {
			return err
		}
	}
}

// Step executes exactly one instruction, delivering a trap if fetch or
// execution faulted, then polls pending interrupts. It mirrors the host
// driver's execute_instruction in the original source: pc is advanced by 4
// once fetch has succeeded (a failed fetch traps with pc unchanged), and a
// fatal exception is reported back to the caller only after the
// corresponding trap has already been taken. While the hart waits after
// WFI, a Step executes nothing and only polls interrupts; delivering one
// ends the wait.
func (h *Hart) Step() error {
	if h.wfi {
		h.count++
		pc := h.pc
		h.pollInterrupts()
		if h.pc != pc {
			h.wfi = false
		}
		return nil
	}

	addr := h.pc
	instr, reason, ok := h.fetch()
	if !ok {
		h.takeTrap(reason, addr, addr, false)
		if reason.isFatal() {
			return &FatalTrapError{Reason: reason, PC: addr}
		}
		h.count++
		return nil
	}

	h.pc += 4

	if h.Trace != nil {
		fmt.Fprintf(h.Trace, "%08d [%08x]: %08x\n", h.count, addr, instr)
	}

	ok, reason, trapAddr := h.exec(instr, addr)
	h.x[0] = 0
	if !ok {
		h.takeTrap(reason, trapAddr, addr, false)
		if reason.isFatal() {
			return &FatalTrapError{Reason: reason, PC: addr, Value: trapAddr}
		}
	}

	h.count++
	h.pollInterrupts()
	return nil
}

func (h *Hart) fetch() (uint32, TrapReason, bool) {
	paddr, reason, ok := h.translate(h.pc, Execute)
	if !ok {
		return 0, reason, false
	}
	v, _, ok := h.bus.Load(paddr, 32)
	if !ok {
		return 0, InstructionAccessFault, false
	}
	return uint32(v), 0, true
}

func (h *Hart) readMem(addr uint64, size int) (uint64, TrapReason, bool) {
	paddr, reason, ok := h.translate(addr, Read)
	if !ok {
		return 0, reason, false
	}
	v, r, ok := h.bus.Load(paddr, size)
	if !ok {
		return 0, r, false
	}
	return v, 0, true
}

func (h *Hart) writeMem(addr uint64, size int, v uint64) (TrapReason, bool) {
	paddr, reason, ok := h.translate(addr, Write)
	if !ok {
		return reason, false
	}
	r, ok := h.bus.Store(paddr, size, v)
	if !ok {
		return r, false
	}
	return 0, true
}
