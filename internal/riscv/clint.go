package riscv

// Clint is the core-local interruptor: a guest-written mtimecmp paired with
// a guest-written mtime. Grounded on the original source's clint_load /
// clint_store, which store both registers verbatim and never auto-increment
// mtime — the host frame pacer does not tick it either.
type Clint struct {
	mtimeCmp uint64
	mtime    uint64
}

func NewClint() Clint {
	return Clint{}
}

func (c *Clint) load64(addr uint64) uint64 {
	switch addr {
	case ClintMTimeCmp:
		return c.mtimeCmp
	case ClintMTime:
		return c.mtime
	default:
		return 0
	}
}

func (c *Clint) store64(addr uint64, v uint64) {
	switch addr {
	case ClintMTimeCmp:
		c.mtimeCmp = v
	case ClintMTime:
		c.mtime = v
	}
}

// pendingTimerInterrupt reports whether the live mtime has caught up with
// mtimecmp, surfacing MIP_MTIP the next time the hart polls interrupts.
func (c *Clint) pendingTimerInterrupt() bool {
	return c.mtimeCmp != 0 && c.mtime >= c.mtimeCmp
}
