// Package armflags collects the pure helper functions spec.md §4.4
// calls out as shared by lowering but owned by no single opcode. The
// translator's condition-context check (spec.md §4.4's
// "ConditionPassed(cond)") is block-identity comparison, not flag
// evaluation — see translate.checkCondition — so this package holds
// only the 12-bit modified-immediate expansion data-processing
// immediate forms share.
package armflags

import "math/bits"

// ArmExpandImm implements the ARM ARM's A5.2.4 modified-immediate
// expansion used by ADD/SUB/MOV/... data-processing immediate forms:
// an 8-bit value rotated right by twice a 4-bit rotate field. When
// rotate is zero the value passes through unchanged and the carry-out
// is whatever carry was already live (carryIn); otherwise carry-out is
// the top bit of the rotated result.
func ArmExpandImm(imm8 uint8, rotate uint8, carryIn bool) (value uint32, carryOut bool) {
	if rotate == 0 {
		return uint32(imm8), carryIn
	}
	value = bits.RotateLeft32(uint32(imm8), -int(rotate)*2)
	carryOut = value>>31 == 1
	return value, carryOut
}
