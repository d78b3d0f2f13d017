package ssa

import (
	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/microop"
)

// Builder owns a single in-progress Block and exposes typed constructors
// that append nodes while enforcing the SSA invariants of spec.md §8:
// operand arity and types are checked against microop.Of, write-flag
// overrides may only narrow a MicroOpInfo's default mask, and operands
// must already exist in this block.
type Builder struct {
	block *Block
}

// NewBuilder starts building a fresh, empty block at the given location.
func NewBuilder(loc arch.LocationDescriptor) *Builder {
	return &Builder{block: &Block{Location: loc}}
}

// ConstU32 appends a ConstU32 node.
func (b *Builder) ConstU32(v uint32) NodeID {
	id := b.append(Value{op: microop.OpConstU32, typ: microop.U32, constVal: v})
	return id
}

// GetGPR appends a GetGPR node reading register r.
func (b *Builder) GetGPR(r arch.Reg) NodeID {
	return b.append(Value{op: microop.OpGetGPR, typ: microop.U32, reg: r, hasReg: true})
}

// SetGPR appends a SetGPR node writing x into register r.
func (b *Builder) SetGPR(r arch.Reg, x NodeID) (NodeID, error) {
	id, err := b.inst(microop.OpSetGPR, []NodeID{x}, nil)
	if err != nil {
		return 0, err
	}
	b.block.values[id].reg = r
	b.block.values[id].hasReg = true
	return id, nil
}

// Inst appends a node of the given op over args, with write_flags
// initialized to op's default write mask. Use InstFlags to request a
// narrower mask.
func (b *Builder) Inst(op microop.Op, args []NodeID) (NodeID, error) {
	return b.inst(op, args, nil)
}

// InstFlags appends a node of the given op over args, overriding its
// write_flags to override. override must be a subset of op's default
// write mask (IllegalFlagWiden otherwise).
func (b *Builder) InstFlags(op microop.Op, args []NodeID, override microop.Flags) (NodeID, error) {
	return b.inst(op, args, &override)
}

func (b *Builder) inst(op microop.Op, args []NodeID, override *microop.Flags) (NodeID, error) {
	if b.block.state == finalized {
		return 0, &Error{Kind: BlockFinalized, Msg: "cannot append to a finalized block"}
	}

	info := microop.Of(op)

	if len(args) != info.Arity() {
		return 0, &Error{Kind: TypeMismatch, Msg: "operand count does not match MicroOpInfo arity"}
	}
	for i, a := range args {
		if int(a) < 0 || int(a) >= len(b.block.values) {
			return 0, &Error{Kind: OperandNotInBlock, Msg: "operand references a node not yet appended to this block"}
		}
		if b.block.values[a].typ != info.OperandTypes[i] {
			return 0, &Error{Kind: TypeMismatch, Msg: "operand type does not match MicroOpInfo"}
		}
	}

	writeFlags := info.DefaultWriteFlags
	if override != nil {
		if !override.SubsetOf(info.DefaultWriteFlags) {
			return 0, &Error{Kind: IllegalFlagWiden, Msg: "write_flags_override is not a subset of the op's default write mask"}
		}
		writeFlags = *override
	}

	id := b.append(Value{
		op:         op,
		typ:        info.ReturnType,
		operands:   append([]NodeID(nil), args...),
		writeFlags: writeFlags,
	})
	for i, a := range args {
		b.block.registerUse(a, id, i)
	}
	return id, nil
}

func (b *Builder) append(v Value) NodeID {
	id := NodeID(len(b.block.values))
	v.id = id
	b.block.values = append(b.block.values, v)
	return id
}

// SetTerm sets the block's terminal. The last call wins; calling it
// after Finish has returned the block is a BlockFinalized error.
func (b *Builder) SetTerm(t Terminal) error {
	if b.block.state == finalized {
		return &Error{Kind: BlockFinalized, Msg: "cannot set terminal on a finalized block"}
	}
	b.block.terminal = t
	b.block.state = terminalSet
	return nil
}

// SetTermReturnToDispatch is shorthand for SetTerm(TermReturnToDispatch()).
func (b *Builder) SetTermReturnToDispatch() error { return b.SetTerm(TermReturnToDispatch()) }

// SetTermPopRSBHint is shorthand for SetTerm(TermPopRSBHint()).
func (b *Builder) SetTermPopRSBHint() error { return b.SetTerm(TermPopRSBHint()) }

// SetTermInterpret is shorthand for SetTerm(TermInterpret(next)).
func (b *Builder) SetTermInterpret(next arch.LocationDescriptor) error {
	return b.SetTerm(TermInterpret(next))
}

// SetTermLinkBlock is shorthand for SetTerm(TermLinkBlock(next)).
func (b *Builder) SetTermLinkBlock(next arch.LocationDescriptor) error {
	return b.SetTerm(TermLinkBlock(next))
}

// SetTermLinkBlockFast is shorthand for SetTerm(TermLinkBlockFast(next)).
func (b *Builder) SetTermLinkBlockFast(next arch.LocationDescriptor) error {
	return b.SetTerm(TermLinkBlockFast(next))
}

// SetTermIf is shorthand for SetTerm(TermIf(cond, then, els)).
func (b *Builder) SetTermIf(cond arch.Cond, then, els Terminal) error {
	return b.SetTerm(TermIf(cond, then, els))
}

// HasTerm reports whether a terminal has been set (Building -> TerminalSet).
func (b *Builder) HasTerm() bool { return b.block.state != building }

// Block exposes the in-progress block for read-only inspection (e.g. so
// the translator can look up a previously materialized GetGPR handle by
// value) without giving up the builder's exclusive ownership of
// mutation.
func (b *Builder) Block() *Block { return b.block }

// Finish finalizes and returns the block. After this call, SetGPR, Inst,
// InstFlags and SetTerm return BlockFinalized; ConstU32 and GetGPR do
// not check the state and still append to the returned block.
func (b *Builder) Finish() *Block {
	b.block.state = finalized
	return b.block
}
