package riscv

import "encoding/binary"

// DiskSectorSize is the byte-addressing unit of the Sector register.
const DiskSectorSize = 512

// Bus is the pure address-range decoder in front of RAM and the MMIO
// devices (CLINT, PLIC, UART, disk, keyboard). Dispatch order and per-device width rules are grounded on the
// original source's bus_load/bus_store RANGE_CHECK cascade: Clint, Plic,
// UART, Disk, Kbd, then RAM if the address is at or above RAMBase.
type Bus struct {
	RAM   []byte
	Clint Clint
	Plic  Plic
	UART  *UART
	Disk  *Disk
	Kbd   *Keyboard
}

func NewBus(ram []byte, uart *UART, disk *Disk, kbd *Keyboard) *Bus {
	return &Bus{
		RAM:   ram,
		Clint: NewClint(),
		Plic:  NewPlic(),
		UART:  uart,
		Disk:  disk,
		Kbd:   kbd,
	}
}

func inRange(addr, base, size uint64) bool {
	return addr >= base && addr < base+size
}

// Load reads a size-bit (8/16/32/64) little-endian value at addr. A width
// mismatch against a device's fixed access width is reported as an access
// fault, matching the original source's `if (size != N) return false` guards.
func (b *Bus) Load(addr uint64, size int) (uint64, TrapReason, bool) {
	switch {
	case inRange(addr, ClintBase, ClintSize):
		if size != 64 {
			return 0, LoadAccessFault, false
		}
		return b.Clint.load64(addr), 0, true
	case inRange(addr, PlicBase, PlicSize):
		if size != 32 {
			return 0, LoadAccessFault, false
		}
		return uint64(b.Plic.load32(addr)), 0, true
	case inRange(addr, UARTBase, UARTSize):
		if size != 8 {
			return 0, LoadAccessFault, false
		}
		return uint64(b.UART.load8(addr)), 0, true
	case inRange(addr, DiskBase, DiskSize):
		if size != 32 {
			return 0, LoadAccessFault, false
		}
		return uint64(b.Disk.load32(addr)), 0, true
	case inRange(addr, KbdBase, KbdSize):
		if size != 32 {
			return 0, LoadAccessFault, false
		}
		return uint64(b.Kbd.load32(addr)), 0, true
	case addr >= RAMBase:
		off := addr - RAMBase
		n := uint64(size / 8)
		if off+n > uint64(len(b.RAM)) {
			return 0, LoadAccessFault, false
		}
		switch size {
		case 8:
			return uint64(b.RAM[off]), 0, true
		case 16:
			return uint64(binary.LittleEndian.Uint16(b.RAM[off:])), 0, true
		case 32:
			return uint64(binary.LittleEndian.Uint32(b.RAM[off:])), 0, true
		case 64:
			return binary.LittleEndian.Uint64(b.RAM[off:]), 0, true
		}
	}
	return 0, LoadAccessFault, false
}

// Store writes a size-bit little-endian value to addr.
func (b *Bus) Store(addr uint64, size int, v uint64) (TrapReason, bool) {
	switch {
	case inRange(addr, ClintBase, ClintSize):
		if size != 64 {
			return StoreAMOAccessFault, false
		}
		b.Clint.store64(addr, v)
		return 0, true
	case inRange(addr, PlicBase, PlicSize):
		if size != 32 {
			return StoreAMOAccessFault, false
		}
		b.Plic.store32(addr, uint32(v))
		return 0, true
	case inRange(addr, UARTBase, UARTSize):
		if size != 8 {
			return StoreAMOAccessFault, false
		}
		b.UART.store8(addr, uint8(v))
		return 0, true
	case inRange(addr, DiskBase, DiskSize):
		if size != 32 {
			return StoreAMOAccessFault, false
		}
		b.Disk.store32(addr, uint32(v))
		return 0, true
	case inRange(addr, KbdBase, KbdSize):
		// Kbd exposes no writable registers; ignore, matching the
		// original source's default no-op for unknown kbd offsets.
		return 0, true
	case addr >= RAMBase:
		off := addr - RAMBase
		n := uint64(size / 8)
		if off+n > uint64(len(b.RAM)) {
			return StoreAMOAccessFault, false
		}
		switch size {
		case 8:
			b.RAM[off] = uint8(v)
		case 16:
			binary.LittleEndian.PutUint16(b.RAM[off:], uint16(v))
		case 32:
			binary.LittleEndian.PutUint32(b.RAM[off:], uint32(v))
		case 64:
			binary.LittleEndian.PutUint64(b.RAM[off:], v)
		}
		return 0, true
	}
	return StoreAMOAccessFault, false
}

// runDiskDMA performs the byte-wise transfer the guest requested via the
// disk's buffer/length/sector/direction registers, then clears Done.
// Grounded on the original source's bus_disk_access: direction==1 means
// RAM-to-disk, anything else means disk-to-RAM.
func (b *Bus) runDiskDMA() {
	d := b.Disk
	addr := d.bufferAddress()
	length := d.bufferLength()
	sectorOff := uint64(d.sector) * DiskSectorSize

	for i := uint64(0); i < length; i++ {
		if d.direction == 1 {
			v, _, ok := b.Load(addr+i, 8)
			if !ok {
				break
			}
			d.writeByte(sectorOff+i, byte(v))
		} else {
			v := d.readByte(sectorOff + i)
			b.Store(addr+i, 8, uint64(v))
		}
	}
	d.done = 0
}
