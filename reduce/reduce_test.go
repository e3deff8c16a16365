package reduce

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Weighted", func() {
	var (
		dst    []float64
		window [][]float64
	)

	BeforeEach(func() {
		dst = make([]float64, 2)
		window = [][]float64{
			{1, 10},
			{2, 20},
			{4, 40},
		}
	})

	It("should average with the weights", func() {
		Weighted(Mean, dst, window, []float64{3, 3, 1}, 7)

		// (3*1 + 3*2 + 1*4) / 7 = 13/7
		Expect(dst[0]).To(BeNumerically("~", 13.0/7.0, 1e-12))
		Expect(dst[1]).To(BeNumerically("~", 130.0/7.0, 1e-12))
	})

	It("should conserve an extensive quantity with sum", func() {
		Weighted(Sum, dst, window, []float64{3, 3, 1}, 7)

		// Weights normalized by the span become time fractions.
		Expect(dst[0]).To(BeNumerically("~", 13.0/7.0, 1e-12))
	})

	It("should ignore weights for point", func() {
		Weighted(Point, dst, window, []float64{3, 3, 1}, 7)

		Expect(dst).To(Equal([]float64{4, 40}))
	})

	It("should take the elementwise minimum", func() {
		window[1][1] = -20

		Weighted(Minimum, dst, window, []float64{0, 3, 4}, 7)

		Expect(dst).To(Equal([]float64{1, -20}))
	})

	It("should take the elementwise maximum", func() {
		Weighted(Maximum, dst, window, []float64{0, 3, 4}, 7)

		Expect(dst).To(Equal([]float64{4, 40}))
	})

	It("should skip zero-weight values entirely", func() {
		window[0] = []float64{1e30, 1e30}

		Weighted(Mean, dst, window, []float64{0, 3, 4}, 7)

		Expect(dst[0]).To(BeNumerically("~", (3*2.0+4*4.0)/7.0, 1e-12))
	})

	It("should panic on a weight count mismatch", func() {
		Expect(func() {
			Weighted(Mean, dst, window, []float64{1, 2}, 7)
		}).To(Panic())
	})
})

var _ = Describe("Window", func() {
	var (
		dst    []float64
		window [][]float64
	)

	BeforeEach(func() {
		dst = make([]float64, 3)
		window = [][]float64{
			{1, Missing, 5},
			{3, Missing, Missing},
		}
	})

	It("should average present values only", func() {
		Window(Mean, dst, window)

		Expect(dst[0]).To(BeNumerically("==", 2))
		Expect(dst[1]).To(BeNumerically("==", Missing))
		Expect(dst[2]).To(BeNumerically("==", 5))
	})

	It("should sum present values, not treating missing as zero", func() {
		Window(Sum, dst, window)

		Expect(dst[0]).To(BeNumerically("==", 4))
		Expect(dst[1]).To(BeNumerically("==", Missing))
		Expect(dst[2]).To(BeNumerically("==", 5))
	})

	It("should take extremes over present values", func() {
		Window(Minimum, dst, window)
		Expect(dst[0]).To(BeNumerically("==", 1))
		Expect(dst[1]).To(BeNumerically("==", Missing))

		Window(Maximum, dst, window)
		Expect(dst[0]).To(BeNumerically("==", 3))
		Expect(dst[2]).To(BeNumerically("==", 5))
	})

	It("should reduce an empty window to missing", func() {
		Window(Mean, dst, nil)

		for _, v := range dst {
			Expect(v).To(BeNumerically("==", Missing))
		}
	})
})
