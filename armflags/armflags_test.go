package armflags_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armfront/armflags"
)

func TestArmflags(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Armflags Suite")
}

var _ = Describe("ArmExpandImm", func() {
	It("passes an unrotated immediate through unchanged", func() {
		v, c := armflags.ArmExpandImm(0xFF, 0, true)
		Expect(v).To(Equal(uint32(0xFF)))
		Expect(c).To(BeTrue(), "rotate==0 keeps the incoming carry")
	})

	It("rotates right by twice the rotate field", func() {
		// imm8=0x01, rotate=8 -> ROR(1, 16) == 0x00010000
		v, _ := armflags.ArmExpandImm(0x01, 8, false)
		Expect(v).To(Equal(uint32(0x00010000)))
	})

	It("sets carry-out to the top bit of a rotated result", func() {
		// imm8=0x80, rotate=1 -> ROR(0x80, 2) = 0x00000020, bit31=0
		_, c := armflags.ArmExpandImm(0x80, 1, true)
		Expect(c).To(BeFalse())

		// imm8=0x03, rotate=1 -> ROR(0x03, 2) = 0xC0000000, bit31=1
		_, c2 := armflags.ArmExpandImm(0x03, 1, false)
		Expect(c2).To(BeTrue())
	})
})
