package riscv

// Physical memory map. Base addresses and register offsets are grounded on
// the original C source's semu.h, which the distilled spec dropped; they are
// restored here so the bus decode matches the real hardware layout exactly.
const (
	RAMBase = 0x80000000
	RAMSize = 8 * 1024 * 1024

	FramebufferBase   = 0x80600000
	FramebufferWidth  = 640
	FramebufferHeight = 480

	ClintBase     = 0x02000000
	ClintSize     = 0x00010000
	ClintMTimeCmp = ClintBase + 0x4000
	ClintMTime    = ClintBase + 0xbff8

	PlicBase      = 0x0C000000
	PlicSize      = 0x04000000
	PlicPending   = PlicBase + 0x001000
	PlicSEnable   = PlicBase + 0x002080
	PlicSPriority = PlicBase + 0x201000
	PlicSClaim    = PlicBase + 0x201004

	UARTBase = 0x10000000
	UARTSize = 0x100
	UARTRHR  = UARTBase + 0 // receive holding register (read)
	UARTTHR  = UARTBase + 0 // transmit holding register (write)
	UARTLCR  = UARTBase + 3
	UARTLSR  = UARTBase + 5

	LSRRx = 1 << 0
	LSRTx = 1 << 5

	DiskBase                = 0x10001000
	DiskSize                = 0x100
	DiskMagic               = DiskBase + 0x000
	DiskVersion             = DiskBase + 0x004
	DiskNotify              = DiskBase + 0x008
	DiskDirection           = DiskBase + 0x00C
	DiskBufferAddressHigh   = DiskBase + 0x010
	DiskBufferAddressLow    = DiskBase + 0x014
	DiskBufferLengthHigh    = DiskBase + 0x018
	DiskBufferLengthLow     = DiskBase + 0x01C
	DiskSector              = DiskBase + 0x020
	DiskDone                = DiskBase + 0x024
	DiskMagicValue   uint32 = 0x666F7864
	DiskVersionValue uint32 = 0x01

	KbdBase = 0x10002000
	KbdSize = 0x100
	KbdGet  = KbdBase + 0

	UARTIRQ = 10
	DiskIRQ = 1
)
