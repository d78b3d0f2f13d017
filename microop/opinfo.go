package microop

import "fmt"

// Info is per-opcode static metadata: arity, operand types, return type,
// and the default read/write flag masks. The IR builder consults it to
// validate every constructed node; optimization passes consult it to
// know how far write_flags may narrow.
type Info struct {
	Op                Op
	ReturnType        MicroType
	ReadFlags         Flags
	DefaultWriteFlags Flags
	OperandTypes      []MicroType
	// HasMemorySideEffect marks operations that, despite writing no
	// flags, have an observable effect outside the value graph (Read32's
	// load from guest memory).
	HasMemorySideEffect bool
}

func (i Info) Arity() int { return len(i.OperandTypes) }

// ErrUnknownOp is returned by Lookup (never by Of, which panics — see
// Of's doc comment) when the enumeration was extended without updating
// this table.
type ErrUnknownOp struct{ Op Op }

func (e ErrUnknownOp) Error() string { return fmt.Sprintf("microop: unknown op %v", e.Op) }

// Of returns the metadata for op. This table is exhaustive over the Op
// enumeration by construction (see the exhaustiveness test in
// microop_test.go, which walks every defined Op); a panic here means the
// enumeration was extended without updating this function, a programmer
// error per spec §7, not a runtime condition a caller should recover
// from.
func Of(op Op) Info {
	info, err := Lookup(op)
	if err != nil {
		panic(err)
	}
	return info
}

// Lookup is the fallible counterpart to Of, for callers (e.g. a decoder
// validating a just-extended table) that want the error instead of a
// panic.
func Lookup(op Op) (Info, error) {
	switch op {
	case OpConstU32:
		return Info{Op: op, ReturnType: U32}, nil
	case OpGetGPR:
		return Info{Op: op, ReturnType: U32}, nil
	case OpSetGPR:
		return Info{Op: op, ReturnType: Void, OperandTypes: []MicroType{U32}}, nil
	case OpPushRSBHint:
		return Info{Op: op, ReturnType: Void, OperandTypes: []MicroType{U32}}, nil
	case OpAluWritePC:
		return Info{Op: op, ReturnType: Void, OperandTypes: []MicroType{U32}}, nil
	case OpLoadWritePC:
		return Info{Op: op, ReturnType: Void, OperandTypes: []MicroType{U32}}, nil
	case OpAdd:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: NZCV, OperandTypes: []MicroType{U32, U32}}, nil
	case OpAddWithCarry:
		return Info{Op: op, ReturnType: U32, ReadFlags: FlagC, DefaultWriteFlags: NZCV, OperandTypes: []MicroType{U32, U32}}, nil
	case OpSub:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: NZCV, OperandTypes: []MicroType{U32, U32}}, nil
	case OpAnd:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: NZC, OperandTypes: []MicroType{U32, U32}}, nil
	case OpEor:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: NZC, OperandTypes: []MicroType{U32, U32}}, nil
	case OpNot:
		return Info{Op: op, ReturnType: U32, OperandTypes: []MicroType{U32}}, nil
	case OpLSL:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: FlagC, OperandTypes: []MicroType{U32, U32}}, nil
	case OpLSR:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: FlagC, OperandTypes: []MicroType{U32, U32}}, nil
	case OpASR:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: FlagC, OperandTypes: []MicroType{U32, U32}}, nil
	case OpROR:
		return Info{Op: op, ReturnType: U32, DefaultWriteFlags: FlagC, OperandTypes: []MicroType{U32, U32}}, nil
	case OpRRX:
		// The ARM ARM writes C when the caller's S bit is set; the
		// builder is the one that decides whether to request it via
		// write_flags_override, so the default here stays at the widest
		// a caller may ask for (FlagC) rather than None — narrowing to
		// None (no flags) is the builder's job when S==0.
		return Info{Op: op, ReturnType: U32, ReadFlags: FlagC, DefaultWriteFlags: FlagC, OperandTypes: []MicroType{U32}}, nil
	case OpCountLeadingZeros:
		return Info{Op: op, ReturnType: U32, OperandTypes: []MicroType{U32}}, nil
	case OpClearExclusive:
		return Info{Op: op, ReturnType: Void}, nil
	case OpRead32:
		return Info{Op: op, ReturnType: U32, OperandTypes: []MicroType{U32}, HasMemorySideEffect: true}, nil
	default:
		return Info{}, ErrUnknownOp{Op: op}
	}
}

// All returns every defined Op, in enumeration order — used by the
// exhaustiveness test and by any pass that wants to enumerate the
// closed opcode set.
func All() []Op {
	ops := make([]Op, 0, int(numOps))
	for op := Op(0); op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}
