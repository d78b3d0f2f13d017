package translate

import "github.com/sarchlab/armfront/armdecode"

// VisitSoftwareInterrupt lowers SVC. The interpreter owns every system
// call's semantics, so this always falls back — matching spec.md §8's
// S1 seed scenario exactly.
func (t *Translator) VisitSoftwareInterrupt(inst *armdecode.Instruction) {
	if !t.checkCondition(inst.Cond) {
		return
	}
	t.fallbackToInterpreter()
}

// VisitUnknown handles both decode failure (Op == OpUnknown) and any
// recognized-but-unlowered format: spec.md §7 treats the two
// identically, as a recoverable UnsupportedOpcode.
func (t *Translator) VisitUnknown(inst *armdecode.Instruction) {
	t.fallbackToInterpreter()
}
