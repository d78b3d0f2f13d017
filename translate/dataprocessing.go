package translate

import (
	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/armdecode"
	"github.com/sarchlab/armfront/armflags"
	"github.com/sarchlab/armfront/microop"
	"github.com/sarchlab/armfront/ssa"
)

// VisitDataProcessing lowers the ALU mnemonics this translator
// implements directly from microop.Op primitives. ORR has no
// corresponding microop (spec.md §3 defines Read32 but, symmetrically,
// no logical-or producer), so it and anything else not listed below
// fall back to interpretation.
func (t *Translator) VisitDataProcessing(inst *armdecode.Instruction) {
	if !t.checkCondition(inst.Cond) {
		return
	}

	op2, err := t.operand2(inst)
	if err != nil {
		t.fallbackToInterpreter()
		return
	}

	switch inst.Op {
	case armdecode.OpADD:
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpAdd, inst.SetFlags, t.getReg(inst.Rn), op2))
	case armdecode.OpADC:
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpAddWithCarry, inst.SetFlags, t.getReg(inst.Rn), op2))
	case armdecode.OpSUB:
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpSub, inst.SetFlags, t.getReg(inst.Rn), op2))
	case armdecode.OpRSB:
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpSub, inst.SetFlags, op2, t.getReg(inst.Rn)))
	case armdecode.OpSBC:
		notOp2 := t.mustInst(microop.OpNot, op2)
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpAddWithCarry, inst.SetFlags, t.getReg(inst.Rn), notOp2))
	case armdecode.OpRSC:
		notRn := t.mustInst(microop.OpNot, t.getReg(inst.Rn))
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpAddWithCarry, inst.SetFlags, op2, notRn))
	case armdecode.OpAND:
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpAnd, inst.SetFlags, t.getReg(inst.Rn), op2))
	case armdecode.OpEOR:
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpEor, inst.SetFlags, t.getReg(inst.Rn), op2))
	case armdecode.OpBIC:
		notOp2 := t.mustInst(microop.OpNot, op2)
		t.writeResult(inst.Rd, t.mustInstFlagged(microop.OpAnd, inst.SetFlags, t.getReg(inst.Rn), notOp2))
	case armdecode.OpMVN:
		t.writeResult(inst.Rd, t.mustInst(microop.OpNot, op2))
	case armdecode.OpMOV:
		t.writeResult(inst.Rd, op2)
	case armdecode.OpCMP:
		t.mustInstFlagged(microop.OpSub, true, t.getReg(inst.Rn), op2)
	case armdecode.OpCMN:
		t.mustInstFlagged(microop.OpAdd, true, t.getReg(inst.Rn), op2)
	case armdecode.OpTST:
		t.mustInstFlagged(microop.OpAnd, true, t.getReg(inst.Rn), op2)
	case armdecode.OpTEQ:
		t.mustInstFlagged(microop.OpEor, true, t.getReg(inst.Rn), op2)
	default:
		t.fallbackToInterpreter()
	}
}

// writeResult routes an ALU result either to the deferred register
// cache or, for Rd == PC, to AluWritePC followed by closing the block
// (the target is only known once this runs, so downstream always
// returns to the outer dispatcher).
func (t *Translator) writeResult(rd arch.Reg, result ssa.NodeID) {
	if t.stopCompilation {
		return
	}
	if rd == arch.PC {
		t.mustInst(microop.OpAluWritePC, result)
		t.closeBlock(ssa.TermReturnToDispatch())
		return
	}
	t.setReg(rd, result)
}

// operand2 materializes a data-processing instruction's second operand:
// the statically-expanded modified immediate, or the (optionally
// shifted) register value.
func (t *Translator) operand2(inst *armdecode.Instruction) (ssa.NodeID, error) {
	if inst.IsImmOperand {
		value, _ := armflags.ArmExpandImm(inst.Imm8, inst.Rotate, false)
		return t.builder.ConstU32(value), nil
	}

	if inst.ShiftAmount == 0 && inst.ShiftType != armdecode.ShiftLSL {
		return 0, errUnsupportedShift
	}

	rm := t.getReg(inst.Rm)
	if inst.ShiftAmount == 0 {
		return rm, nil
	}

	op, err := shiftOp(inst.ShiftType)
	if err != nil {
		return 0, err
	}
	amount := t.builder.ConstU32(uint32(inst.ShiftAmount))
	return t.mustInst(op, rm, amount), nil
}

// mustInst appends a node with no write-flags override, panicking if
// the builder rejects it — a rejection here means this translator
// itself violated the SSA contract, the programmer-error class spec.md
// §7 says must never occur under a correct translator.
func (t *Translator) mustInst(op microop.Op, args ...ssa.NodeID) ssa.NodeID {
	id, err := t.builder.Inst(op, args)
	if err != nil {
		panic(err)
	}
	return id
}

// mustInstFlagged is mustInst, narrowing write_flags to None when the
// instruction's S bit was clear.
func (t *Translator) mustInstFlagged(op microop.Op, setFlags bool, args ...ssa.NodeID) ssa.NodeID {
	if setFlags {
		return t.mustInst(op, args...)
	}
	id, err := t.builder.InstFlags(op, args, microop.None)
	if err != nil {
		panic(err)
	}
	return id
}
