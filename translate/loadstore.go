package translate

import (
	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/armdecode"
	"github.com/sarchlab/armfront/microop"
	"github.com/sarchlab/armfront/ssa"
)

// VisitLoadStore lowers LDR. STR has no lowering: microop's memory
// surface (spec.md §3) is read-only (Read32 only, no write producer),
// so every store falls back to the interpreter. Byte-sized transfers
// and register-offset addressing are likewise not modeled and fall
// back; the word-sized, immediate-offset form is the one this
// translator implements.
func (t *Translator) VisitLoadStore(inst *armdecode.Instruction) {
	if !t.checkCondition(inst.Cond) {
		return
	}
	if inst.Op != armdecode.OpLDR || inst.Byte {
		t.fallbackToInterpreter()
		return
	}

	base := t.getReg(inst.Rn)
	offset := t.builder.ConstU32(uint32(inst.LoadStoreOffset))

	var accessAddr = base
	if inst.PreIndexed {
		accessAddr = t.mustInstFlagged(microop.OpAdd, false, base, offset)
	}

	value := t.mustInst(microop.OpRead32, accessAddr)

	if inst.Writeback {
		newBase := accessAddr
		if !inst.PreIndexed {
			newBase = t.mustInstFlagged(microop.OpAdd, false, base, offset)
		}
		t.setReg(inst.Rn, newBase)
	}

	if t.stopCompilation {
		return
	}

	if inst.Rd == arch.PC {
		t.mustInst(microop.OpLoadWritePC, value)
		t.closeBlock(ssa.TermReturnToDispatch())
		return
	}
	t.setReg(inst.Rd, value)
}
