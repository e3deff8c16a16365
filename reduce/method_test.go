package reduce

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseMethod", func() {
	DescribeTable("resolving aliases",
		func(name string, want Method) {
			m, err := ParseMethod(name)
			Expect(err).ToNot(HaveOccurred())
			Expect(m).To(Equal(want))
		},
		Entry("mean", "mean", Mean),
		Entry("average", "average", Mean),
		Entry("sum", "sum", Sum),
		Entry("cumulative", "cumulative", Sum),
		Entry("point", "point", Point),
		Entry("instantaneous", "instantaneous", Point),
		Entry("minimum", "minimum", Minimum),
		Entry("min", "min", Minimum),
		Entry("maximum", "maximum", Maximum),
		Entry("max", "max", Maximum),
	)

	It("should reject unknown names", func() {
		_, err := ParseMethod("bogus")

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, ErrUnknownMethod)).To(BeTrue())
	})

	It("should print method names", func() {
		Expect(Mean.String()).To(Equal("mean"))
		Expect(Maximum.String()).To(Equal("maximum"))
	})
})
