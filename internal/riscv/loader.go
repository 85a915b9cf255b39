package riscv

import "fmt"

// NewRAM allocates the fixed-size RAM window xv6 is built to run inside.
func NewRAM() []byte {
	return make([]byte, RAMSize)
}

// LoadKernel copies a raw kernel image to the front of RAM, matching the
// original source's read_file followed by a direct memcpy into
// bus->ram->data — there is no ELF container to parse, unlike the teacher's
// loadElf.
func LoadKernel(ram []byte, image []byte) error {
	if len(image) > len(ram) {
		return fmt.Errorf("kernel image (%d bytes) exceeds RAM size (%d bytes)", len(image), len(ram))
	}
	copy(ram, image)
	return nil
}
