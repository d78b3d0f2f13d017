package armdecode

import "github.com/sarchlab/armfront/arch"

// DecodeThumb decodes one 16-bit Thumb halfword. Like DecodeARM, an
// unrecognized encoding decodes to OpUnknown/FormatUnknown rather than
// panicking — Thumb has far more formats than this decoder implements
// (register-shifted ALU ops, multiple load/store, PC-relative literal
// pool loads, and the full Thumb-2 32-bit extension are all left to the
// interpreter fallback).
func (d *Decoder) DecodeThumb(half uint16) *Instruction {
	inst := &Instruction{
		Op:     OpUnknown,
		Format: FormatUnknown,
		Cond:   arch.AL,
		Thumb:  true,
	}

	switch {
	case isThumbMoveCompareAddSubImm(half):
		decodeThumbMoveCompareAddSubImm(half, inst)
	case isThumbAddSubReg(half):
		decodeThumbAddSubReg(half, inst)
	case isThumbALUOp(half):
		decodeThumbALUOp(half, inst)
	case isThumbBranchExchange(half):
		decodeThumbBranchExchange(half, inst)
	case isThumbConditionalBranch(half):
		decodeThumbConditionalBranch(half, inst)
	case isThumbUnconditionalBranch(half):
		decodeThumbUnconditionalBranch(half, inst)
	case isThumbSoftwareInterrupt(half):
		decodeThumbSoftwareInterrupt(half, inst)
	}

	return inst
}

var thumbMCASOp = [4]Op{OpMOV, OpCMP, OpADD, OpSUB}

// isThumbMoveCompareAddSubImm matches format 3, 001 op rd imm8.
func isThumbMoveCompareAddSubImm(half uint16) bool {
	return (half>>13)&0x7 == 0x1
}

func decodeThumbMoveCompareAddSubImm(half uint16, inst *Instruction) {
	op := (half >> 11) & 0x3
	inst.Format = FormatDPImm
	inst.Op = thumbMCASOp[op]
	inst.SetFlags = true
	inst.Rd = arch.Reg((half >> 8) & 0x7)
	inst.Rn = inst.Rd
	inst.IsImmOperand = true
	inst.Imm8 = uint8(half & 0xFF)
}

// isThumbAddSubReg matches format 2, 00011 op Rn/imm3 Rs Rd (register or
// 3-bit-immediate add/subtract).
func isThumbAddSubReg(half uint16) bool {
	return (half>>11)&0x1F == 0x3
}

func decodeThumbAddSubReg(half uint16, inst *Instruction) {
	immFlag := (half>>10)&1 == 1
	sub := (half>>9)&1 == 1
	inst.Format = FormatDPReg
	if sub {
		inst.Op = OpSUB
	} else {
		inst.Op = OpADD
	}
	inst.SetFlags = true
	inst.Rn = arch.Reg((half >> 3) & 0x7)
	inst.Rd = arch.Reg(half & 0x7)

	if immFlag {
		inst.IsImmOperand = true
		inst.Imm8 = uint8((half >> 6) & 0x7)
		return
	}
	inst.Rm = arch.Reg((half >> 6) & 0x7)
}

var thumbALUOp = map[uint16]Op{
	0x0: OpAND, 0x1: OpEOR, 0x8: OpTST, 0x9: OpCMN,
	0xA: OpCMP, 0xC: OpORR, 0xE: OpBIC, 0xF: OpMVN,
}

// isThumbALUOp matches a subset of format 4, 010000 op Rs Rd (two-operand
// ALU operations with no shift amount; the shift/rotate sub-opcodes of
// this format are left unimplemented).
func isThumbALUOp(half uint16) bool {
	if (half>>10)&0x3F != 0x10 {
		return false
	}
	_, ok := thumbALUOp[(half>>6)&0xF]
	return ok
}

func decodeThumbALUOp(half uint16, inst *Instruction) {
	inst.Format = FormatDPReg
	inst.Op = thumbALUOp[(half>>6)&0xF]
	inst.SetFlags = true
	inst.Rn = arch.Reg(half & 0x7)
	inst.Rd = inst.Rn
	inst.Rm = arch.Reg((half >> 3) & 0x7)
}

// isThumbBranchExchange matches format 5's BX sub-form, 010001 11 H1 H2 Rs 000.
func isThumbBranchExchange(half uint16) bool {
	return (half>>7)&0x1FF == 0x8E || (half>>7)&0x1FF == 0x8F
}

func decodeThumbBranchExchange(half uint16, inst *Instruction) {
	inst.Format = FormatBranchExchange
	inst.Op = OpBX
	h2 := (half >> 6) & 1
	inst.Rm = arch.Reg((half>>3)&0x7) | arch.Reg(h2<<3)
}

// isThumbConditionalBranch matches format 16, 1101 cond imm8 (cond 1110
// and 1111 are SWI/undefined and excluded here).
func isThumbConditionalBranch(half uint16) bool {
	if (half>>12)&0xF != 0xD {
		return false
	}
	cond := (half >> 8) & 0xF
	return cond < 0xE
}

func decodeThumbConditionalBranch(half uint16, inst *Instruction) {
	inst.Format = FormatBranch
	inst.Op = OpB
	inst.Cond = arch.Cond((half >> 8) & 0xF)
	inst.BranchOffset = signExtend(uint32(half&0xFF), 8) << 1
}

// isThumbUnconditionalBranch matches format 18, 11100 imm11.
func isThumbUnconditionalBranch(half uint16) bool {
	return (half>>11)&0x1F == 0x1C
}

func decodeThumbUnconditionalBranch(half uint16, inst *Instruction) {
	inst.Format = FormatBranch
	inst.Op = OpB
	inst.BranchOffset = signExtend(uint32(half&0x7FF), 11) << 1
}

// isThumbSoftwareInterrupt matches format 17, 11011111 imm8.
func isThumbSoftwareInterrupt(half uint16) bool {
	return (half>>8)&0xFF == 0xDF
}

func decodeThumbSoftwareInterrupt(half uint16, inst *Instruction) {
	inst.Format = FormatSWI
	inst.Op = OpSVC
	inst.SVCComment = uint32(half & 0xFF)
}
