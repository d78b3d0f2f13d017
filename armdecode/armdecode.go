// Package armdecode decodes ARM32 and Thumb16 instruction words into a
// Format/Op-tagged Instruction, and dispatches each to exactly one
// Visitor method.
//
// Its shape — a Decoder with one isXxx/decodeXxx pair per instruction
// format, and a Format/Op enumeration pair describing the result —
// mirrors how AArch64 decoding is organized elsewhere in this
// codebase's lineage, with bit layouts cross-checked against other
// ARM32 decode tables in circulation.
//
// This is a focused, real decoder, not an exhaustive one: it covers
// the data-processing, branch, single-register load/store, and
// software-interrupt formats the translator lowers, plus a handful of
// Thumb 16-bit formats. Any word that doesn't match a known format
// decodes to OpUnknown, and the translator's fallback-to-interpreter
// path handles that gap gracefully.
package armdecode

import "github.com/sarchlab/armfront/arch"

// Op names a decoded mnemonic.
type Op uint16

const (
	OpUnknown Op = iota

	OpAND
	OpEOR
	OpSUB
	OpRSB
	OpADD
	OpADC
	OpSBC
	OpRSC
	OpTST
	OpTEQ
	OpCMP
	OpCMN
	OpORR
	OpMOV
	OpBIC
	OpMVN

	OpB
	OpBL
	OpBX

	OpLDR
	OpSTR

	OpSVC
)

func (op Op) String() string {
	names := map[Op]string{
		OpAND: "AND", OpEOR: "EOR", OpSUB: "SUB", OpRSB: "RSB",
		OpADD: "ADD", OpADC: "ADC", OpSBC: "SBC", OpRSC: "RSC",
		OpTST: "TST", OpTEQ: "TEQ", OpCMP: "CMP", OpCMN: "CMN",
		OpORR: "ORR", OpMOV: "MOV", OpBIC: "BIC", OpMVN: "MVN",
		OpB: "B", OpBL: "BL", OpBX: "BX",
		OpLDR: "LDR", OpSTR: "STR", OpSVC: "SVC",
	}
	if n, ok := names[op]; ok {
		return n
	}
	return "Unknown"
}

// isDataProcessingOp reports whether op is one of the sixteen ALU
// mnemonics (AND..MVN), as opposed to a branch, memory, or SVC op.
func (op Op) isDataProcessingOp() bool { return op >= OpAND && op <= OpMVN }

// ShiftType is the barrel-shifter operation applied to a data-processing
// register operand.
type ShiftType uint8

const (
	ShiftLSL ShiftType = 0
	ShiftLSR ShiftType = 1
	ShiftASR ShiftType = 2
	ShiftROR ShiftType = 3
)

// Format names the ARM32 encoding family a word decoded as.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatDPImm          // Data Processing (Immediate operand2)
	FormatDPReg          // Data Processing (Register operand2, optional shift)
	FormatBranch         // B / BL (PC-relative, 24-bit signed word offset)
	FormatBranchExchange // BX
	FormatLoadStore      // LDR / STR, immediate offset
	FormatSWI            // SVC
)

// Instruction is a decoded ARM32 or Thumb16 instruction.
type Instruction struct {
	Op     Op
	Format Format
	Cond   arch.Cond
	Thumb  bool

	SetFlags bool // S bit, data-processing and a handful of Thumb forms
	Rd       arch.Reg
	Rn       arch.Reg
	Rm       arch.Reg

	// Data-processing operand2.
	IsImmOperand bool
	Imm8         uint8 // unrotated 8-bit immediate
	Rotate       uint8 // 4-bit rotate field (rotate*2 is the actual shift)
	ShiftType    ShiftType
	ShiftAmount  uint8

	// Branch.
	BranchOffset int32 // signed byte offset from the instruction's address plus 8 (ARM) or 4 (Thumb)

	// Load/store.
	LoadStoreOffset int32
	PreIndexed      bool
	Writeback       bool
	Byte            bool

	// SVC.
	SVCComment uint32
}
