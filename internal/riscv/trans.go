package riscv

// translate converts a virtual address to a physical one under the hart's
// current addressing mode. Bare mode is the identity map; SV39 performs the
// three-level Sv39 walk. Grounded on the original source's cpu_translate,
// reworked from the teacher's walkPageTables (whose superpage PPN
// reassembly did not match the real PTE layout) into a generic per-level
// loop over the three VPN/PPN fields.
func (h *Hart) translate(vaddr uint64, access Access) (uint64, TrapReason, bool) {
	if h.mode == Bare {
		return vaddr, 0, true
	}
	if h.mode != SV39 {
		return 0, pageFaultFor(access), false
	}

	// Machine mode with MPRV clear bypasses translation entirely.
	if h.priv == Machine && (h.readcsr(MSTATUS)>>17)&1 == 0 {
		return vaddr, 0, true
	}

	satp := h.readcsr(SATP)
	rootPPN := satp & 0xFFFFFFFFFFF

	vpn := [3]uint64{
		(vaddr >> 12) & 0x1FF,
		(vaddr >> 21) & 0x1FF,
		(vaddr >> 30) & 0x1FF,
	}

	a := rootPPN
	for level := 2; level >= 0; level-- {
		pteAddr := a*4096 + vpn[level]*8
		pteVal, _, ok := h.bus.Load(pteAddr, 64)
		if !ok {
			return 0, pageFaultFor(access), false
		}

		v := pteVal&1 != 0
		r := (pteVal>>1)&1 != 0
		w := (pteVal>>2)&1 != 0
		x := (pteVal>>3)&1 != 0

		if !v || (!r && w) {
			return 0, pageFaultFor(access), false
		}

		if !r && !x {
			if level == 0 {
				return 0, pageFaultFor(access), false
			}
			a = (pteVal >> 10) & 0xFFFFFFFFFFF
			continue
		}

		switch access {
		case Execute:
			if !x {
				return 0, pageFaultFor(access), false
			}
		case Read:
			if !r {
				return 0, pageFaultFor(access), false
			}
		case Write:
			if !w {
				return 0, pageFaultFor(access), false
			}
		}

		ppn := (pteVal >> 10) & 0xFFFFFFFFFFF
		paddr := vaddr & 0xFFF
		for i := 0; i < 3; i++ {
			if i >= level {
				paddr |= ((ppn >> (9 * uint(i))) & 0x1FF) << (12 + 9*uint(i))
			} else {
				paddr |= vpn[i] << (12 + 9*uint(i))
			}
		}
		return paddr, 0, true
	}
	return 0, pageFaultFor(access), false
}

func pageFaultFor(access Access) TrapReason {
	switch access {
	case Execute:
		return InstructionPageFault
	case Write:
		return StoreAMOPageFault
	default:
		return LoadPageFault
	}
}
