package riscv

// Instruction-format decoders for the RV64IMA/Zicsr subset. Bit layouts are
// grounded on the teacher's parse{I,S,B,U,J,CSR,R} helpers, which match the
// RISC-V base ISA manual's encoding tables exactly for this instruction set.

type iType struct {
	imm    int32
	rs1    uint32
	funct3 uint32
	rd     uint32
}

func parseI(instr uint32) iType {
	imm := uint32(0)
	if (instr>>31)&1 == 1 {
		imm = 0xfffff800
	}
	return iType{
		imm:    int32(imm | (instr>>20)&0x7ff),
		rs1:    (instr >> 15) & 0x1f,
		funct3: (instr >> 12) & 0x7,
		rd:     (instr >> 7) & 0x1f,
	}
}

type sType struct {
	imm    int32
	rs1    uint32
	funct3 uint32
	rs2    uint32
}

func parseS(instr uint32) sType {
	imm := uint32(0)
	if (instr>>31)&1 == 1 {
		imm = 0xfffff800
	}
	return sType{
		imm:    int32(imm | ((instr>>25)&0x3f)<<5 | (instr>>7)&0x1f),
		rs1:    (instr >> 15) & 0x1f,
		rs2:    (instr >> 20) & 0x1f,
		funct3: (instr >> 12) & 0x7,
	}
}

type bType struct {
	imm    int32
	rs1    uint32
	funct3 uint32
	rs2    uint32
}

func parseB(instr uint32) bType {
	imm := uint32(0)
	if (instr>>31)&1 == 1 {
		imm = 0xfffff000
	}
	return bType{
		imm:    int32(imm | ((instr>>25)&0x3f)<<5 | (instr>>7)&0x1e | (instr>>7)&1<<11),
		rs1:    (instr >> 15) & 0x1f,
		rs2:    (instr >> 20) & 0x1f,
		funct3: (instr >> 12) & 0x7,
	}
}

type uType struct {
	imm int64
	rd  uint32
}

func parseU(instr uint32) uType {
	imm := uint64(0)
	if (instr>>31)&1 == 1 {
		imm = 0xffffffff00000000
	}
	return uType{
		imm: int64(imm | uint64(instr)&0xfffff000),
		rd:  (instr >> 7) & 0x1f,
	}
}

type jType struct {
	imm int32
	rd  uint32
}

func parseJ(instr uint32) jType {
	imm := uint32(0)
	if (instr>>31)&1 == 1 {
		imm = 0xfff00000
	}
	return jType{
		imm: int32(imm | (instr & 0xff000) | (instr&0x100000)>>9 | (instr&0x7fe00000)>>20),
		rd:  (instr >> 7) & 0x1f,
	}
}

type csrType struct {
	csr    uint32
	rs     uint32
	funct3 uint32
	rd     uint32
}

func parseCSR(instr uint32) csrType {
	return csrType{
		csr:    (instr >> 20) & 0xfff,
		rs:     (instr >> 15) & 0x1f,
		funct3: (instr >> 12) & 0x7,
		rd:     (instr >> 7) & 0x1f,
	}
}

type rType struct {
	funct7 uint32
	rs2    uint32
	rs1    uint32
	funct3 uint32
	rd     uint32
}

func parseR(instr uint32) rType {
	return rType{
		funct7: (instr >> 25) & 0x7f,
		rs2:    (instr >> 20) & 0x1f,
		rs1:    (instr >> 15) & 0x1f,
		funct3: (instr >> 12) & 0x7,
		rd:     (instr >> 7) & 0x1f,
	}
}
