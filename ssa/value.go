// Package ssa implements the SSA value graph and basic-block container:
// MicroValue nodes with typed operands and use-lists, the MicroTerminal
// control-transfer descriptor, and the Builder that appends nodes into a
// block while enforcing the invariants in spec.md §8.
//
// Nodes live in a typed arena owned by the Block (design notes §9): a
// MicroValue's identity is a NodeID, a stable index into the block's
// node slice, rather than a reference-counted pointer with weak operand
// edges. Because nodes are only ever appended, never removed, dominance
// by order falls out of NodeID ordering for free.
package ssa

import (
	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/microop"
)

// NodeID is the stable handle to a MicroValue within its owning Block.
// It is also the node's position in Block.Values(), which is how
// dominance-by-order (spec.md §8 invariant 2) is enforced: an operand's
// NodeID is always numerically less than the NodeID of any node that
// references it.
type NodeID int

// Use is one entry in a node's use-list: the node at User references
// this node from operand position Slot.
type Use struct {
	User NodeID
	Slot int
}

// Value is a single SSA microinstruction node.
type Value struct {
	id         NodeID
	op         microop.Op
	typ        microop.MicroType
	operands   []NodeID
	writeFlags microop.Flags
	uses       []Use

	// Per-variant immutable fields. Only ConstU32, GetGPR, and SetGPR
	// carry one; every other op is fully described by op + operands.
	constVal uint32
	reg      arch.Reg
	hasReg   bool
}

// ID returns the node's stable handle.
func (v *Value) ID() NodeID { return v.id }

// Op returns the node's operation tag.
func (v *Value) Op() microop.Op { return v.op }

// Type returns the node's static result type.
func (v *Value) Type() microop.MicroType { return v.typ }

// OperandCount returns the number of operand edges the node has.
func (v *Value) OperandCount() int { return len(v.operands) }

// Operand returns the NodeID referenced at slot i.
func (v *Value) Operand(i int) NodeID { return v.operands[i] }

// ReadFlags returns the flags this node reads as an input, per its
// MicroOpInfo.
func (v *Value) ReadFlags() microop.Flags { return microop.Of(v.op).ReadFlags }

// WriteFlags returns the node's instance write-flags mask. It starts at
// MicroOpInfo.DefaultWriteFlags and may only narrow from there (spec.md
// §8 invariant 6).
func (v *Value) WriteFlags() microop.Flags { return v.writeFlags }

// Uses returns the node's use-list: every (user, slot) pair that
// references this node as an operand.
func (v *Value) Uses() []Use { return append([]Use(nil), v.uses...) }

// ConstValue returns the immediate value of a ConstU32 node. Valid only
// when Op() == microop.OpConstU32.
func (v *Value) ConstValue() uint32 { return v.constVal }

// Register returns the register operand of a GetGPR or SetGPR node.
// Valid only when Op() is one of those two.
func (v *Value) Register() arch.Reg { return v.reg }
