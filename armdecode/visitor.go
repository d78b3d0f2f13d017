package armdecode

// Visitor receives exactly one call per decoded instruction, dispatched
// by Dispatch. The decoder never branches on Op itself beyond choosing
// which method to call, so a translate.Translator implementing Visitor
// is free to keep all ARM-semantics knowledge in one place per
// mnemonic.
//
// Unrecognized words (Op == OpUnknown) and recognized-but-unhandled
// combinations go through VisitUnknown, which is the hook the
// fallback-to-interpreter path hangs off of.
type Visitor interface {
	VisitDataProcessing(inst *Instruction)
	VisitBranch(inst *Instruction)
	VisitBranchExchange(inst *Instruction)
	VisitLoadStore(inst *Instruction)
	VisitSoftwareInterrupt(inst *Instruction)
	VisitUnknown(inst *Instruction)
}

// Dispatch calls the one Visitor method matching inst.Format.
func Dispatch(v Visitor, inst *Instruction) {
	switch inst.Format {
	case FormatDPImm, FormatDPReg:
		v.VisitDataProcessing(inst)
	case FormatBranch:
		v.VisitBranch(inst)
	case FormatBranchExchange:
		v.VisitBranchExchange(inst)
	case FormatLoadStore:
		v.VisitLoadStore(inst)
	case FormatSWI:
		v.VisitSoftwareInterrupt(inst)
	default:
		v.VisitUnknown(inst)
	}
}

// Decode decodes one instruction at the given Thumb-mode setting. ARM
// words are read as a plain uint32; Thumb halfwords are passed in the
// low 16 bits of word with the upper 16 bits ignored. Callers that
// already distinguish the two forms can call DecodeARM/DecodeThumb
// directly.
func (d *Decoder) Decode(word uint32, thumb bool) *Instruction {
	if thumb {
		return d.DecodeThumb(uint16(word))
	}
	return d.DecodeARM(word)
}
