package ssa

import "github.com/sarchlab/armfront/arch"

// TerminalKind discriminates the MicroTerminal tagged union.
type TerminalKind uint8

const (
	// ReturnToDispatch hands control back to the outer dispatcher.
	ReturnToDispatch TerminalKind = iota
	// PopRSBHint pops a predicted return target; a back-end may treat
	// this identically to ReturnToDispatch if the prediction fails.
	PopRSBHint
	// Interpret invokes the interpreter on the instruction at Next, then
	// returns to dispatch. The graceful-degradation terminal.
	Interpret
	// LinkBlock chains to the block identified by Next, only if the
	// dispatcher's cycle budget allows — a decision this package does
	// not make.
	LinkBlock
	// LinkBlockFast chains to Next unconditionally.
	LinkBlockFast
	// If evaluates Cond against the live flags and branches to Then or
	// Else. Recursive: Then/Else are themselves Terminals.
	If
)

// Terminal is the tagged control-transfer descriptor that ends a block.
// If's Then/Else sub-terminals are owned by the parent Terminal; there
// is no cycle, so no special collection is required.
type Terminal struct {
	Kind TerminalKind
	Next arch.LocationDescriptor // Interpret, LinkBlock, LinkBlockFast

	Cond arch.Cond // If
	Then *Terminal // If
	Else *Terminal // If
}

// TermReturnToDispatch builds a ReturnToDispatch terminal.
func TermReturnToDispatch() Terminal { return Terminal{Kind: ReturnToDispatch} }

// TermPopRSBHint builds a PopRSBHint terminal.
func TermPopRSBHint() Terminal { return Terminal{Kind: PopRSBHint} }

// TermInterpret builds an Interpret terminal targeting next.
func TermInterpret(next arch.LocationDescriptor) Terminal {
	return Terminal{Kind: Interpret, Next: next}
}

// TermLinkBlock builds a LinkBlock terminal targeting next.
func TermLinkBlock(next arch.LocationDescriptor) Terminal {
	return Terminal{Kind: LinkBlock, Next: next}
}

// TermLinkBlockFast builds a LinkBlockFast terminal targeting next.
func TermLinkBlockFast(next arch.LocationDescriptor) Terminal {
	return Terminal{Kind: LinkBlockFast, Next: next}
}

// TermIf builds an If terminal. then and els are copied onto the heap so
// the caller's locals may go out of scope.
func TermIf(cond arch.Cond, then, els Terminal) Terminal {
	return Terminal{Kind: If, Cond: cond, Then: &then, Else: &els}
}

func (k TerminalKind) String() string {
	switch k {
	case ReturnToDispatch:
		return "ReturnToDispatch"
	case PopRSBHint:
		return "PopRSBHint"
	case Interpret:
		return "Interpret"
	case LinkBlock:
		return "LinkBlock"
	case LinkBlockFast:
		return "LinkBlockFast"
	case If:
		return "If"
	default:
		return "Unknown"
	}
}
