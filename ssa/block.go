package ssa

import (
	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/microop"
)

// blockState is the block translation state machine of spec.md §4.4:
// Building -> TerminalSet -> Finalized.
type blockState uint8

const (
	building blockState = iota
	terminalSet
	finalized
)

// Block is the output of translation: an ordered sequence of
// MicroValue nodes plus one terminal. It owns every node by insertion
// order; operand edges are non-owning back-references into the same
// slice, so dropping a Block releases every node together with no
// reference counting required.
type Block struct {
	Location arch.LocationDescriptor

	values   []Value
	terminal Terminal
	state    blockState

	// InstructionsTranslated counts the number of guest instructions the
	// translator consumed to produce this block, for diagnostics — it is
	// not the same as len(values), since one guest instruction usually
	// lowers to several microinstructions.
	InstructionsTranslated int
}

// Values returns the block's instructions in insertion (and therefore
// dominance) order. The returned slice is the block's own backing array
// and must not be mutated by the caller; use the Block's own mutation
// primitives (SetOperand, ReplaceAllUsesWith) instead.
func (b *Block) Values() []Value { return b.values }

// Len returns the number of instructions in the block.
func (b *Block) Len() int { return len(b.values) }

// Value returns the node with the given id.
func (b *Block) Value(id NodeID) *Value { return &b.values[id] }

// Terminal returns the block's terminal. Valid once the block has left
// the Building state.
func (b *Block) Terminal() Terminal { return b.terminal }

// IsFinalized reports whether the block has been returned by Builder.Finish.
func (b *Block) IsFinalized() bool { return b.state == finalized }

// SetOperand rewrites operand slot i of user to point at newOperand,
// deregistering the use on the old operand and registering it on the
// new one. It is the single place operand slots are mutated outside of
// node construction, centralizing use-list bookkeeping per spec.md
// §4.1's "Use-list mechanics".
func (b *Block) SetOperand(user NodeID, i int, newOperand NodeID) error {
	if int(newOperand) < 0 || int(newOperand) >= len(b.values) {
		return &Error{Kind: OperandNotInBlock, Msg: "new operand is not a node in this block"}
	}
	v := &b.values[user]
	if i < 0 || i >= len(v.operands) {
		return &Error{Kind: OperandNotInBlock, Msg: "operand slot out of range"}
	}
	oldOperand := v.operands[i]
	if oldOperand == newOperand {
		return nil
	}
	wantType := microop.Of(v.op).OperandTypes[i]
	if b.values[newOperand].typ != wantType {
		return &Error{Kind: TypeMismatch, Msg: "replacement operand type does not match MicroOpInfo"}
	}

	b.deregisterUse(oldOperand, user, i)
	v.operands[i] = newOperand
	b.registerUse(newOperand, user, i)
	return nil
}

// ReplaceAllUsesWith moves every use of old onto new: for each
// (user, slot) in old.uses, sets user.operand[slot] = new. After the
// call old.uses is empty. A no-op when old == new. Fails with
// TypeMismatch if the two nodes' types differ, per spec.md §4.1.
func (b *Block) ReplaceAllUsesWith(old, new NodeID) error {
	if old == new {
		return nil
	}
	if b.values[old].typ != b.values[new].typ {
		return &Error{Kind: TypeMismatch, Msg: "replace_all_uses_with: type mismatch"}
	}
	uses := b.values[old].uses
	b.values[old].uses = nil
	for _, u := range uses {
		b.values[u.User].operands[u.Slot] = new
	}
	b.values[new].uses = append(b.values[new].uses, uses...)
	return nil
}

func (b *Block) registerUse(operand, user NodeID, slot int) {
	b.values[operand].uses = append(b.values[operand].uses, Use{User: user, Slot: slot})
}

func (b *Block) deregisterUse(operand, user NodeID, slot int) {
	uses := b.values[operand].uses
	for i, u := range uses {
		if u.User == user && u.Slot == slot {
			b.values[operand].uses = append(uses[:i], uses[i+1:]...)
			return
		}
	}
}
