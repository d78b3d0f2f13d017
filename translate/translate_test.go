package translate_test

import (
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/armdecode"
	"github.com/sarchlab/armfront/guestmem"
	"github.com/sarchlab/armfront/microop"
	"github.com/sarchlab/armfront/ssa"
	"github.com/sarchlab/armfront/translate"
)

func TestTranslate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Translate Suite")
}

func wordBytes(w uint32) []byte {
	return []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
}

// faultAfterFirst is a guestmem.Memory stub that serves exactly one
// code word and faults on every subsequent read, used to exercise the
// translator's fault propagation after real progress has already been
// made, without depending on FlatMemory's page zero-fill behavior.
type faultAfterFirst struct {
	word  uint32
	reads int
}

func (f *faultAfterFirst) ReadCodeU32(addr uint32) (uint32, error) {
	f.reads++
	if f.reads == 1 {
		return f.word, nil
	}
	return 0, &guestmem.FaultError{Addr: addr}
}

var _ = Describe("Translate", func() {
	var (
		mem     *guestmem.FlatMemory
		decoder *armdecode.Decoder
	)

	BeforeEach(func() {
		mem = guestmem.NewFlatMemory()
		decoder = armdecode.NewDecoder()
	})

	translateAt := func(loc arch.LocationDescriptor) *ssa.Block {
		block, err := translate.Translate(mem, decoder, loc, logr.Discard())
		Expect(err).NotTo(HaveOccurred())
		return block
	}

	// S1 — Empty supported region: SVC falls back to interpretation.
	It("falls back to the interpreter on an unsupported opcode", func() {
		mem.WriteBytes(0x1000, wordBytes(0xEF000000)) // SVC #0
		loc := arch.LocationDescriptor{PC: 0x1000, ConditionContext: arch.AL}

		block := translateAt(loc)

		Expect(block.Len()).To(Equal(0))
		Expect(block.Terminal().Kind).To(Equal(ssa.Interpret))
		Expect(block.Terminal().Next).To(Equal(loc))
	})

	// S2 — Unconditional add-immediate, S=0. Placed at the last word of a
	// page so the block closes via the page-boundary rule spec.md §4.4
	// describes, rather than reading on into the zero-filled instructions
	// that would otherwise follow in a freshly allocated page.
	It("lowers an unconditional ADD and defers the register write-back", func() {
		mem.WriteBytes(0xFFC, wordBytes(0xE2810001)) // ADD R0, R1, #1
		loc := arch.LocationDescriptor{PC: 0xFFC, ConditionContext: arch.AL}

		block := translateAt(loc)

		var getGPR, constNode, add, setGPR *ssa.Value
		for i := 0; i < block.Len(); i++ {
			v := block.Value(ssa.NodeID(i))
			switch v.Op() {
			case microop.OpGetGPR:
				getGPR = v
			case microop.OpConstU32:
				constNode = v
			case microop.OpAdd:
				add = v
			case microop.OpSetGPR:
				setGPR = v
			}
		}

		Expect(getGPR).NotTo(BeNil())
		Expect(getGPR.Register()).To(Equal(arch.Reg(1)))
		Expect(constNode).NotTo(BeNil())
		Expect(constNode.ConstValue()).To(Equal(uint32(1)))
		Expect(add).NotTo(BeNil())
		Expect(add.WriteFlags()).To(Equal(microop.None))
		Expect(setGPR).NotTo(BeNil())
		Expect(setGPR.Register()).To(Equal(arch.Reg(0)))
		Expect(setGPR.Operand(0)).To(Equal(add.ID()))

		Expect(block.Terminal().Kind).To(Equal(ssa.LinkBlock))
		Expect(block.Terminal().Next).To(Equal(arch.LocationDescriptor{PC: 0x1000, ConditionContext: arch.AL}))
	})

	// S3 — Flag-setting add.
	It("lowers ADDS with full NZCV write_flags", func() {
		mem.WriteBytes(0xFFC, wordBytes(0xE2910001)) // ADDS R0, R1, #1
		loc := arch.LocationDescriptor{PC: 0xFFC, ConditionContext: arch.AL}

		block := translateAt(loc)

		var add *ssa.Value
		for i := 0; i < block.Len(); i++ {
			if v := block.Value(ssa.NodeID(i)); v.Op() == microop.OpAdd {
				add = v
			}
		}
		Expect(add).NotTo(BeNil())
		Expect(add.WriteFlags()).To(Equal(microop.NZCV))
	})

	// S4 — Condition mismatch.
	It("closes the block with a LinkBlock when the instruction's condition doesn't match the context", func() {
		mem.WriteBytes(0x2000, wordBytes(0x02810001)) // ADDEQ R0, R1, #1
		loc := arch.LocationDescriptor{PC: 0x2000, ConditionContext: arch.AL}

		block := translateAt(loc)

		Expect(block.Len()).To(Equal(0))
		Expect(block.Terminal().Kind).To(Equal(ssa.LinkBlock))
		Expect(block.Terminal().Next).To(Equal(arch.LocationDescriptor{PC: 0x2000, ConditionContext: arch.EQ}))
	})

	// S5 — Branch with a positive 24-bit signed offset.
	It("lowers B with the correct sign-extended, pc+8-relative target", func() {
		mem.WriteBytes(0x1000, wordBytes(0xEA000040)) // B #0x100 (imm24=0x40)
		loc := arch.LocationDescriptor{PC: 0x1000, ConditionContext: arch.AL}

		block := translateAt(loc)

		Expect(block.Len()).To(Equal(0))
		Expect(block.Terminal().Kind).To(Equal(ssa.LinkBlock))
		Expect(block.Terminal().Next.PC).To(Equal(uint32(0x1108)))
	})

	// S6 — Page boundary stop.
	It("stops a run of ADDs exactly at the 4 KiB page boundary", func() {
		for pc := uint32(0xFF0); pc <= 0xFFC; pc += 4 {
			mem.WriteBytes(pc, wordBytes(0xE2810001)) // ADD R0, R1, #1
		}
		loc := arch.LocationDescriptor{PC: 0xFF0, ConditionContext: arch.AL}

		block := translateAt(loc)

		addCount := 0
		for i := 0; i < block.Len(); i++ {
			if block.Value(ssa.NodeID(i)).Op() == microop.OpAdd {
				addCount++
			}
		}
		Expect(addCount).To(Equal(4))
		Expect(block.Terminal().Kind).To(Equal(ssa.LinkBlock))
		Expect(block.Terminal().Next.PC).To(Equal(uint32(0x1000)))
	})

	It("propagates a fault on the very first code fetch", func() {
		loc := arch.LocationDescriptor{PC: 0x9000, ConditionContext: arch.AL}
		_, err := translate.Translate(mem, decoder, loc, logr.Discard())
		Expect(err).To(HaveOccurred())
	})

	It("propagates a fault even after at least one instruction was lowered", func() {
		fm := &faultAfterFirst{word: 0xE2810001} // ADD R0, R1, #1, then every further fetch faults
		loc := arch.LocationDescriptor{PC: 0x3000, ConditionContext: arch.AL}

		block, err := translate.Translate(fm, decoder, loc, logr.Discard())
		Expect(err).To(HaveOccurred())
		Expect(block).To(BeNil())
	})

	It("lowers BX through LoadWritePC and returns to dispatch", func() {
		mem.WriteBytes(0x4000, wordBytes(0xE12FFF1E)) // BX LR
		loc := arch.LocationDescriptor{PC: 0x4000, ConditionContext: arch.AL}

		block := translateAt(loc)

		found := false
		for i := 0; i < block.Len(); i++ {
			if block.Value(ssa.NodeID(i)).Op() == microop.OpLoadWritePC {
				found = true
			}
		}
		Expect(found).To(BeTrue())
		Expect(block.Terminal().Kind).To(Equal(ssa.ReturnToDispatch))
	})

	It("lowers LDR through Read32 with an immediate offset", func() {
		mem.WriteBytes(0x5000, wordBytes(0xE5910004)) // LDR R0, [R1, #4]
		loc := arch.LocationDescriptor{PC: 0x5000, ConditionContext: arch.AL}

		block := translateAt(loc)

		found := false
		for i := 0; i < block.Len(); i++ {
			if block.Value(ssa.NodeID(i)).Op() == microop.OpRead32 {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("falls back to the interpreter on STR, which microop has no producer for", func() {
		mem.WriteBytes(0x6000, wordBytes(0xE5810004)) // STR R0, [R1, #4]
		loc := arch.LocationDescriptor{PC: 0x6000, ConditionContext: arch.AL}

		block := translateAt(loc)

		Expect(block.Terminal().Kind).To(Equal(ssa.Interpret))
	})
})
