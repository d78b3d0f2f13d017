package armdecode

import "github.com/sarchlab/armfront/arch"

// Decoder decodes 32-bit ARM words and 16-bit Thumb halfwords.
type Decoder struct{}

// NewDecoder creates an ARM/Thumb decoder. It carries no state — the
// teacher's insts.NewDecoder is the same shape, a stateless value whose
// only job is to group the decode methods.
func NewDecoder() *Decoder { return &Decoder{} }

var dpMnemonic = [16]Op{
	OpAND, OpEOR, OpSUB, OpRSB, OpADD, OpADC, OpSBC, OpRSC,
	OpTST, OpTEQ, OpCMP, OpCMN, OpORR, OpMOV, OpBIC, OpMVN,
}

// DecodeARM decodes one 32-bit ARM word. It returns an Instruction with
// Op == OpUnknown (Format == FormatUnknown) when the word doesn't match
// any format this decoder recognizes — the translator's
// fallback_to_interpreter path exists exactly for that case.
func (d *Decoder) DecodeARM(word uint32) *Instruction {
	inst := &Instruction{
		Op:     OpUnknown,
		Format: FormatUnknown,
		Cond:   arch.Cond((word >> 28) & 0xF),
	}

	switch {
	case isBranchExchange(word):
		d.decodeBranchExchange(word, inst)
	case isBranch(word):
		d.decodeBranch(word, inst)
	case isSoftwareInterrupt(word):
		d.decodeSoftwareInterrupt(word, inst)
	case isLoadStore(word):
		d.decodeLoadStore(word, inst)
	case isDataProcessing(word):
		d.decodeDataProcessing(word, inst)
	}

	return inst
}

// isDataProcessing matches bits[27:26] == 00, excluding the
// multiply/multiply-accumulate sub-format (bits[27:22] == 0 and
// bits[7:4] == 0b1001), which this decoder does not implement; such
// words are left as FormatUnknown and fall back to interpretation.
func isDataProcessing(word uint32) bool {
	if (word>>26)&0x3 != 0 {
		return false
	}
	isMultiply := (word>>22)&0x3F == 0 && (word>>4)&0xF == 0x9
	return !isMultiply
}

func (d *Decoder) decodeDataProcessing(word uint32, inst *Instruction) {
	i := (word >> 25) & 1
	opcode := (word >> 21) & 0xF
	inst.SetFlags = (word>>20)&1 == 1
	inst.Rn = arch.Reg((word >> 16) & 0xF)
	inst.Rd = arch.Reg((word >> 12) & 0xF)
	inst.Op = dpMnemonic[opcode]
	inst.Format = FormatDPReg

	if i == 1 {
		inst.IsImmOperand = true
		inst.Format = FormatDPImm
		inst.Rotate = uint8((word >> 8) & 0xF)
		inst.Imm8 = uint8(word & 0xFF)
		return
	}

	inst.Rm = arch.Reg(word & 0xF)
	inst.ShiftType = ShiftType((word >> 5) & 0x3)
	if (word>>4)&1 == 1 {
		// Register-specified shift amounts (bit4==1) are not modeled;
		// such words decode as OpUnknown/FormatUnknown, so Dispatch
		// routes them to VisitUnknown and they fall back to interpretation.
		inst.Op = OpUnknown
		inst.Format = FormatUnknown
		return
	}
	inst.ShiftAmount = uint8((word >> 7) & 0x1F)
}

// isBranch matches bits[27:24] == 101x (B, BL).
func isBranch(word uint32) bool {
	return (word>>25)&0x7 == 0x5
}

func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Format = FormatBranch
	link := (word>>24)&1 == 1
	if link {
		inst.Op = OpBL
	} else {
		inst.Op = OpB
	}

	imm24 := word & 0xFFFFFF
	inst.BranchOffset = signExtend(imm24, 24) << 2
}

// isBranchExchange matches the fixed BX encoding 0001 0010 1111 1111 1111 0001 Rm.
func isBranchExchange(word uint32) bool {
	return (word>>4)&0xFFFFFF == 0x12FFF1
}

func (d *Decoder) decodeBranchExchange(word uint32, inst *Instruction) {
	inst.Op = OpBX
	inst.Format = FormatBranchExchange
	inst.Rm = arch.Reg(word & 0xF)
}

// isLoadStore matches bits[27:26] == 01 with I (bit25) == 0 — the
// immediate-offset single-register transfer form (LDR/STR, word size).
func isLoadStore(word uint32) bool {
	return (word>>26)&0x3 == 1 && (word>>25)&1 == 0
}

func (d *Decoder) decodeLoadStore(word uint32, inst *Instruction) {
	inst.Format = FormatLoadStore
	load := (word>>20)&1 == 1
	if load {
		inst.Op = OpLDR
	} else {
		inst.Op = OpSTR
	}

	up := (word>>23)&1 == 1
	inst.PreIndexed = (word>>24)&1 == 1
	inst.Writeback = (word>>21)&1 == 1
	inst.Byte = (word>>22)&1 == 1
	inst.Rn = arch.Reg((word >> 16) & 0xF)
	inst.Rd = arch.Reg((word >> 12) & 0xF)

	offset := int32(word & 0xFFF)
	if !up {
		offset = -offset
	}
	inst.LoadStoreOffset = offset
}

// isSoftwareInterrupt matches bits[27:24] == 1111 (SVC/SWI).
func isSoftwareInterrupt(word uint32) bool {
	return (word>>24)&0xF == 0xF
}

func (d *Decoder) decodeSoftwareInterrupt(word uint32, inst *Instruction) {
	inst.Op = OpSVC
	inst.Format = FormatSWI
	inst.SVCComment = word & 0xFFFFFF
}

// signExtend sign-extends the low `bits` bits of v and returns the
// result as a signed 32-bit offset in instructions (the caller scales
// by 4 for a word-aligned branch).
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
