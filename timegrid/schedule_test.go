package timegrid

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schedule", func() {
	It("should split a slow consumer across fast producer steps", func() {
		s, err := NewSchedule(3, 7, 42)

		Expect(err).ToNot(HaveOccurred())
		Expect(s.History()).To(Equal(3))
		Expect(s.Period()).To(Equal(3))
		Expect(s.Row(0)).To(Equal([]float64{3, 3, 1}))
		Expect(s.Row(1)).To(Equal([]float64{2, 3, 2}))
		Expect(s.Row(2)).To(Equal([]float64{1, 3, 3}))

		// Rows repeat with the period.
		Expect(s.Row(3)).To(Equal(s.Row(0)))
		Expect(s.Row(5)).To(Equal(s.Row(2)))
	})

	It("should straddle producer steps for a fast consumer", func() {
		s, err := NewSchedule(7, 3, 42)

		Expect(err).ToNot(HaveOccurred())
		Expect(s.History()).To(Equal(2))
		Expect(s.Period()).To(Equal(7))

		expected := [][]float64{
			{0, 3}, {0, 3}, {1, 2}, {0, 3}, {2, 1}, {0, 3}, {0, 3},
		}
		for m, row := range expected {
			Expect(s.Row(m)).To(Equal(row))
		}
	})

	It("should be an identity for equal rates", func() {
		s, err := NewSchedule(5, 5, 25)

		Expect(err).ToNot(HaveOccurred())
		Expect(s.History()).To(Equal(1))

		for m := 0; m < s.Len(); m++ {
			Expect(s.Row(m)).To(Equal([]float64{5}))
		}
	})

	It("should pass through a single covering producer step", func() {
		s, err := NewSchedule(6, 3, 18)

		Expect(err).ToNot(HaveOccurred())
		Expect(s.History()).To(Equal(1))

		for m := 0; m < s.Len(); m++ {
			Expect(s.Row(m)).To(Equal([]float64{3}))
		}
	})

	It("should give equal full weights for an exact multiple", func() {
		s, err := NewSchedule(2, 6, 12)

		Expect(err).ToNot(HaveOccurred())
		Expect(s.History()).To(Equal(3))
		Expect(s.Row(0)).To(Equal([]float64{2, 2, 2}))
	})

	DescribeTable("every row sums to the consumer rate",
		func(from, to Rate, runLength int) {
			s, err := NewSchedule(from, to, runLength)
			Expect(err).ToNot(HaveOccurred())

			for m := 0; m < s.Len(); m++ {
				row := s.Row(m)
				Expect(row).To(HaveLen(s.History()))

				sum := 0.0
				for _, w := range row {
					sum += w
				}

				Expect(sum).To(BeNumerically("==", float64(to)))
			}
		},
		Entry("1 to 1", Rate(1), Rate(1), 10),
		Entry("3 to 7", Rate(3), Rate(7), 42),
		Entry("7 to 3", Rate(7), Rate(3), 42),
		Entry("4 to 6", Rate(4), Rate(6), 24),
		Entry("6 to 4", Rate(6), Rate(4), 24),
		Entry("1 to 24", Rate(1), Rate(24), 48),
		Entry("24 to 1", Rate(24), Rate(1), 48),
		Entry("5 to 12", Rate(5), Rate(12), 60),
		Entry("12 to 5", Rate(12), Rate(5), 60),
	)

	DescribeTable("the history bound follows the closed form",
		func(from, to Rate, runLength, history int) {
			s, err := NewSchedule(from, to, runLength)
			Expect(err).ToNot(HaveOccurred())
			Expect(s.History()).To(Equal(history))

			longest := 0
			for m := 0; m < s.Period(); m++ {
				count := 0
				for _, w := range s.Row(m) {
					if w != 0 {
						count++
					}
				}
				longest = max(longest, count)
			}

			Expect(longest).To(Equal(history))
		},
		Entry("equal rates", Rate(5), Rate(5), 25, 1),
		Entry("consumer slower, inexact", Rate(3), Rate(7), 42, 3),
		Entry("consumer slower, exact", Rate(2), Rate(6), 12, 3),
		Entry("producer slower, inexact", Rate(7), Rate(3), 42, 2),
		Entry("producer slower, exact", Rate(6), Rate(3), 18, 1),
	)

	It("should reject non-positive rates", func() {
		_, err := NewSchedule(0, 3, 9)
		Expect(err).To(HaveOccurred())

		_, err = NewSchedule(3, -1, 9)
		Expect(err).To(HaveOccurred())
	})

	It("should reject a run length not divisible by both rates", func() {
		_, err := NewSchedule(3, 7, 40)
		Expect(err).To(HaveOccurred())

		_, err = NewSchedule(3, 7, 7)
		Expect(err).To(HaveOccurred())
	})

	It("should bound the iteration by the run length", func() {
		s, err := NewSchedule(3, 7, 42)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Len()).To(Equal(6))

		Expect(func() { s.Row(6) }).To(Panic())
		Expect(func() { s.Row(-1) }).To(Panic())
	})
})
