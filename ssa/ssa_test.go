package ssa_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/microop"
	"github.com/sarchlab/armfront/ssa"
)

func TestSSA(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SSA Suite")
}

var _ = Describe("Builder", func() {
	var b *ssa.Builder

	BeforeEach(func() {
		b = ssa.NewBuilder(arch.LocationDescriptor{PC: 0x1000, ConditionContext: arch.AL})
	})

	Describe("construction", func() {
		It("assigns monotonically increasing NodeIDs", func() {
			c1 := b.ConstU32(1)
			c2 := b.ConstU32(2)
			Expect(c2).To(BeNumerically(">", c1))
		})

		It("registers a use when an operand edge is created", func() {
			c1 := b.ConstU32(1)
			r1 := b.GetGPR(0)
			sum, err := b.Inst(microop.OpAdd, []ssa.NodeID{r1, c1})
			Expect(err).NotTo(HaveOccurred())

			uses := b.Block().Value(c1).Uses()
			Expect(uses).To(ConsistOf(ssa.Use{User: sum, Slot: 1}))
		})

		It("rejects an operand not yet appended to the block", func() {
			bogus := ssa.NodeID(999)
			_, err := b.Inst(microop.OpNot, []ssa.NodeID{bogus})
			Expect(err).To(MatchError(&ssa.Error{Kind: ssa.OperandNotInBlock}))
		})

		It("rejects an operand of the wrong type", func() {
			voidNode, err := b.SetGPR(0, b.ConstU32(1))
			Expect(err).NotTo(HaveOccurred())
			_, err = b.Inst(microop.OpNot, []ssa.NodeID{voidNode})
			Expect(err).To(MatchError(&ssa.Error{Kind: ssa.TypeMismatch}))
		})

		It("rejects the wrong operand count", func() {
			c1 := b.ConstU32(1)
			_, err := b.Inst(microop.OpAdd, []ssa.NodeID{c1})
			Expect(err).To(MatchError(&ssa.Error{Kind: ssa.TypeMismatch}))
		})

		It("defaults write_flags to the op's default mask", func() {
			c1, c2 := b.ConstU32(1), b.ConstU32(2)
			sum, err := b.Inst(microop.OpAdd, []ssa.NodeID{c1, c2})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Block().Value(sum).WriteFlags()).To(Equal(microop.NZCV))
		})

		It("allows narrowing write_flags via InstFlags", func() {
			c1, c2 := b.ConstU32(1), b.ConstU32(2)
			sum, err := b.InstFlags(microop.OpAdd, []ssa.NodeID{c1, c2}, microop.None)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Block().Value(sum).WriteFlags()).To(Equal(microop.None))
		})

		It("rejects widening write_flags past the op's default mask", func() {
			c1, c2 := b.ConstU32(1), b.ConstU32(2)
			_, err := b.InstFlags(microop.OpAnd, []ssa.NodeID{c1, c2}, microop.NZCV)
			Expect(err).To(MatchError(&ssa.Error{Kind: ssa.IllegalFlagWiden}))
		})
	})

	Describe("terminal state machine", func() {
		It("starts without a terminal", func() {
			Expect(b.HasTerm()).To(BeFalse())
		})

		It("moves to TerminalSet on the first SetTerm", func() {
			Expect(b.SetTermReturnToDispatch()).To(Succeed())
			Expect(b.HasTerm()).To(BeTrue())
		})

		It("lets later SetTerm calls overwrite earlier ones", func() {
			Expect(b.SetTermReturnToDispatch()).To(Succeed())
			next := arch.LocationDescriptor{PC: 0x2000, ConditionContext: arch.AL}
			Expect(b.SetTermLinkBlock(next)).To(Succeed())

			block := b.Finish()
			Expect(block.Terminal().Kind).To(Equal(ssa.LinkBlock))
			Expect(block.Terminal().Next).To(Equal(next))
		})

		It("rejects SetTerm after Finish", func() {
			Expect(b.SetTermReturnToDispatch()).To(Succeed())
			b.Finish()
			err := b.SetTermReturnToDispatch()
			Expect(err).To(MatchError(&ssa.Error{Kind: ssa.BlockFinalized}))
		})
	})

	Describe("replace_all_uses_with", func() {
		It("is a no-op when old == new", func() {
			c1 := b.ConstU32(1)
			block := b.Block()
			Expect(block.ReplaceAllUsesWith(c1, c1)).To(Succeed())
		})

		It("moves every use from old to new and empties old's use-list", func() {
			c1, c2 := b.ConstU32(1), b.ConstU32(2)
			r1 := b.GetGPR(0)
			sum, err := b.Inst(microop.OpAdd, []ssa.NodeID{r1, c1})
			Expect(err).NotTo(HaveOccurred())

			block := b.Block()
			Expect(block.ReplaceAllUsesWith(c1, c2)).To(Succeed())

			Expect(block.Value(c1).Uses()).To(BeEmpty())
			Expect(block.Value(c2).Uses()).To(ConsistOf(ssa.Use{User: sum, Slot: 1}))
			Expect(block.Value(sum).Operand(1)).To(Equal(c2))
		})

		It("fails with TypeMismatch when types differ", func() {
			c1 := b.ConstU32(1)
			voidNode, err := b.SetGPR(0, c1)
			Expect(err).NotTo(HaveOccurred())

			block := b.Block()
			err = block.ReplaceAllUsesWith(c1, voidNode)
			Expect(err).To(MatchError(&ssa.Error{Kind: ssa.TypeMismatch}))
		})
	})

	Describe("SetOperand", func() {
		It("deregisters the old use and registers the new one", func() {
			c1, c2 := b.ConstU32(1), b.ConstU32(2)
			r1 := b.GetGPR(0)
			sum, err := b.Inst(microop.OpAdd, []ssa.NodeID{r1, c1})
			Expect(err).NotTo(HaveOccurred())

			block := b.Block()
			Expect(block.SetOperand(sum, 1, c2)).To(Succeed())

			Expect(block.Value(c1).Uses()).To(BeEmpty())
			Expect(block.Value(c2).Uses()).To(ConsistOf(ssa.Use{User: sum, Slot: 1}))
		})
	})
})
