package sim

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Name", func() {
	ginkgo.It("should parse name", func() {
		tokens := ParseName("MLP.Chan[0]")
		Expect(tokens[0].ElemName).To(Equal("MLP"))
		Expect(tokens[0].Index).To(BeEmpty())
		Expect(tokens[1].ElemName).To(Equal("Chan"))
		Expect(tokens[1].Index).To(Equal([]int{0}))
	})

	ginkgo.It("should parse multi-dimensional index", func() {
		tokens := ParseName("Array[0][1].PE[2][3]")
		Expect(tokens[0].ElemName).To(Equal("Array"))
		Expect(tokens[0].Index).To(Equal([]int{0, 1}))
		Expect(tokens[1].ElemName).To(Equal("PE"))
		Expect(tokens[1].Index).To(Equal([]int{2, 3}))
	})

	ginkgo.It("should accept valid names", func() {
		Expect(func() { NameMustBeValid("MLP.GEMV") }).NotTo(Panic())
		Expect(func() { NameMustBeValid("MLP.Chan[3]") }).NotTo(Panic())
	})

	ginkgo.It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	ginkgo.It("should panic if name include underscore", func() {
		Expect(func() { NameMustBeValid("GEMV_0") }).To(Panic())
	})

	ginkgo.It("should panic if name include dash", func() {
		Expect(func() { NameMustBeValid("GEMV-0") }).To(Panic())
	})

	ginkgo.It("should panic if name is not capitalized CamelCase", func() {
		Expect(func() { NameMustBeValid("gemv") }).To(Panic())
	})

	ginkgo.It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("Chan[0") }).To(Panic())
		Expect(func() { NameMustBeValid("Chan0]") }).To(Panic())
	})

	ginkgo.It("should require integer indices", func() {
		Expect(func() { NameMustBeValid("Chan[a]") }).To(Panic())
	})

	ginkgo.It("should be panic if element name is empty", func() {
		Expect(func() { NameMustBeValid("MLP..Act") }).To(Panic())
	})

	ginkgo.It("should build name", func() {
		Expect(BuildName("", "MLP")).To(Equal("MLP"))
		Expect(BuildName("MLP", "GEMV")).To(Equal("MLP.GEMV"))
	})

	ginkgo.It("should build name with index", func() {
		Expect(BuildNameWithIndex("", "Chan", 0)).To(Equal("Chan[0]"))
		Expect(BuildNameWithIndex("MLP", "Chan", 2)).To(Equal("MLP.Chan[2]"))
	})
})
