package translate

import (
	"github.com/sarchlab/armfront/armdecode"
	"github.com/sarchlab/armfront/microop"
	"github.com/sarchlab/armfront/ssa"
)

// VisitBranch lowers B and BL. Per spec.md §8 scenario S5, the current
// source does not model BL's link-register write, and this translator
// preserves that: both mnemonics lower identically, to a direct
// LinkBlock at the statically known target.
func (t *Translator) VisitBranch(inst *armdecode.Instruction) {
	if !t.checkCondition(inst.Cond) {
		return
	}

	offset := uint32(8)
	if t.current.ThumbMode {
		offset = 4
	}
	target := t.current.PC + offset + uint32(inst.BranchOffset)

	t.closeBlock(ssa.TermLinkBlock(t.current.WithPC(target)))
}

// VisitBranchExchange lowers BX. The destination mode (ARM vs Thumb) is
// only known once Rm's runtime value is read, so this always returns
// to the outer dispatcher rather than statically chaining.
func (t *Translator) VisitBranchExchange(inst *armdecode.Instruction) {
	if !t.checkCondition(inst.Cond) {
		return
	}

	target := t.getReg(inst.Rm)
	t.mustInst(microop.OpLoadWritePC, target)
	t.closeBlock(ssa.TermReturnToDispatch())
}
