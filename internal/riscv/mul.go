package riscv

import "math/bits"

// mulhu returns the upper 64 bits of the 128-bit unsigned product of u and v.
func mulhu(u, v uint64) uint64 {
	hi, _ := bits.Mul64(u, v)
	return hi
}

// mulh returns the upper 64 bits of the 128-bit signed product of u and v.
func mulh(u, v int64) int64 {
	hi := mulhu(uint64(u), uint64(v))
	if u < 0 {
		hi -= uint64(v)
	}
	if v < 0 {
		hi -= uint64(u)
	}
	return int64(hi)
}

// mulhsu returns the upper 64 bits of the 128-bit product of signed u and unsigned v.
func mulhsu(u int64, v uint64) int64 {
	hi := mulhu(uint64(u), v)
	if u < 0 {
		hi -= v
	}
	return int64(hi)
}
