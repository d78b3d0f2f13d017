// Package translate implements the translator/visitor that spec.md §4.4
// describes: it drives the decoder over a straight-line guest-code
// region and lowers each recognized opcode into the ssa package's
// microinstruction IR, falling back to an Interpret terminal for
// anything it does not implement.
//
// Grounded on the teacher's timing/pipeline stage-driver shape (a
// per-invocation struct that owns mutable cursor state and is driven to
// completion by a tight loop), generalized here to decode-and-lower
// instead of cycle-step.
package translate

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/armdecode"
	"github.com/sarchlab/armfront/guestmem"
	"github.com/sarchlab/armfront/microop"
	"github.com/sarchlab/armfront/ssa"
)

// Translator holds the per-block state of one translate() invocation.
// It implements armdecode.Visitor; Dispatch calls exactly one of its
// Visit* methods per decoded instruction.
type Translator struct {
	mem     guestmem.Memory
	decoder *armdecode.Decoder
	log     logr.Logger

	builder *ssa.Builder
	current arch.LocationDescriptor

	regValues [arch.NumGPR]ssa.NodeID
	regValid  [arch.NumGPR]bool

	instructionsTranslated int
	stopCompilation         bool
	err                     error
}

// Translate is the subsystem's sole public entry point (spec.md §6):
// it decodes and lowers guest code starting at loc into one finalized
// ssa.Block.
func Translate(mem guestmem.Memory, decoder *armdecode.Decoder, loc arch.LocationDescriptor, log logr.Logger) (*ssa.Block, error) {
	t := &Translator{
		mem:     mem,
		decoder: decoder,
		log:     log,
		builder: ssa.NewBuilder(loc),
		current: loc,
	}
	return t.run()
}

func (t *Translator) run() (*ssa.Block, error) {
	for !t.stopCompilation {
		word, ferr := t.mem.ReadCodeU32(t.current.PC &^ 3)
		if ferr != nil {
			// spec.md §5/§7: a code-fetch fault is fatal and must
			// propagate to the caller, whether or not any instruction
			// has already been lowered into this block.
			t.log.Error(ferr, "code fetch faulted during translation",
				"pc", fmt.Sprintf("%#x", t.current.PC),
				"instructionsTranslated", t.instructionsTranslated)
			return nil, ferr
		}
		if t.current.ThumbMode && t.current.PC&2 != 0 {
			// The halfword at PC is the upper half of the little-endian
			// word fetched from PC &^ 3.
			word >>= 16
		}

		inst := t.decoder.Decode(word, t.current.ThumbMode)
		armdecode.Dispatch(t, inst)
		t.instructionsTranslated++

		if t.stopCompilation {
			break
		}

		oldPage := t.current.PageOf()
		t.current = t.current.WithPC(t.current.PC + instructionSize(t.current.ThumbMode))
		if t.current.PageOf() != oldPage {
			t.closeBlock(ssa.TermLinkBlock(t.current))
			break
		}
	}

	if t.err != nil {
		return nil, t.err
	}
	if !t.builder.HasTerm() {
		// Only reachable if stopCompilation was set without a terminal
		// being assigned, which every closeBlock call in this package
		// prevents; kept as a defensive fallback rather than a panic
		// since an external Visitor implementation could in principle
		// violate the contract.
		t.closeBlock(ssa.TermLinkBlock(t.current))
	}

	block := t.builder.Finish()
	block.InstructionsTranslated = t.instructionsTranslated
	t.log.V(1).Info("translated block",
		"pc", fmt.Sprintf("%#x", block.Location.PC),
		"instructions", block.Len(),
		"terminal", block.Terminal().Kind)
	return block, nil
}

func instructionSize(thumb bool) uint32 {
	if thumb {
		return 2
	}
	return 4
}

// closeBlock flushes the deferred register write-back (spec.md §4.4's
// "the present source leaves this final emission as a TODO; an
// implementer must complete it") and assigns the block's terminal
// exactly once.
func (t *Translator) closeBlock(term ssa.Terminal) {
	for r := arch.Reg(0); int(r) < arch.NumGPR; r++ {
		if !t.regValid[r] {
			continue
		}
		// A register that was only read still holds its own GetGPR node;
		// it was not modified, so it needs no write-back.
		if v := t.builder.Block().Value(t.regValues[r]); v.Op() == microop.OpGetGPR && v.Register() == r {
			continue
		}
		if _, err := t.builder.SetGPR(r, t.regValues[r]); err != nil {
			t.fail(err)
			return
		}
	}
	if err := t.builder.SetTerm(term); err != nil {
		t.fail(err)
		return
	}
	t.stopCompilation = true
}

func (t *Translator) fail(err error) {
	if t.err == nil {
		t.err = err
	}
	t.stopCompilation = true
}

// fallbackToInterpreter is spec.md §4.4's conservative escape hatch for
// any opcode this translator does not lower: close the block with an
// Interpret terminal pointed at the instruction that triggered it.
func (t *Translator) fallbackToInterpreter() {
	t.closeBlock(ssa.TermInterpret(t.current))
}

// checkCondition implements spec.md §4.4's condition-context rule. It
// returns true when the caller should proceed to lower the instruction
// unconditionally within this block; when it returns false it has
// already closed the block with a LinkBlock successor and the caller
// must not lower anything further.
func (t *Translator) checkCondition(cond arch.Cond) bool {
	if cond == t.current.ConditionContext {
		return true
	}
	successor := t.current.WithCondition(cond)
	t.closeBlock(ssa.TermLinkBlock(successor))
	return false
}

// getReg materializes the SSA handle for a register read, lazily
// caching GetGPR nodes for R0..R14 and synthesizing R15 (PC) fresh on
// every read since its value changes as current.pc advances.
func (t *Translator) getReg(r arch.Reg) ssa.NodeID {
	if r == arch.PC {
		offset := uint32(8)
		if t.current.ThumbMode {
			offset = 4
		}
		return t.builder.ConstU32(t.current.PC + offset)
	}
	if t.regValid[r] {
		return t.regValues[r]
	}
	id := t.builder.GetGPR(r)
	t.regValues[r] = id
	t.regValid[r] = true
	return id
}

// setReg overwrites the cached value for register r. No SetGPR is
// emitted here; closeBlock flushes it at block end.
func (t *Translator) setReg(r arch.Reg, v ssa.NodeID) {
	t.regValues[r] = v
	t.regValid[r] = true
}

// errUnsupportedShift is returned internally by operand2 for a shift
// encoding this translator does not lower (an immediate amount of 0 with
// LSR, ASR or ROR, which encodes LSR #32, ASR #32 or RRX); the caller
// falls back to interpretation rather than risk silently misreading it.
// Register-specified shift amounts never reach operand2: the decoder
// marks those words unknown.
var errUnsupportedShift = errors.New("translate: shift encoding is not modeled")

func shiftOp(st armdecode.ShiftType) (microop.Op, error) {
	switch st {
	case armdecode.ShiftLSL:
		return microop.OpLSL, nil
	case armdecode.ShiftLSR:
		return microop.OpLSR, nil
	case armdecode.ShiftASR:
		return microop.OpASR, nil
	case armdecode.ShiftROR:
		return microop.OpROR, nil
	default:
		return 0, errUnsupportedShift
	}
}
