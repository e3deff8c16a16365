package timegrid

import (
	"fmt"
	"log"
)

// A Schedule holds the time-overlap weights that resample one producer's
// output onto one consumer's grid.
//
// The producer's value at step n is treated as constant over the fine-tick
// interval [n*from, (n+1)*from). The consumer's aggregate for step m covers
// [m*to, (m+1)*to). The weight a producer step contributes to a consumer
// step is the length of the intersection of the two intervals.
//
// Rows repeat with period lcm(from, to)/to consumer steps, so only one
// period is stored; Row indexes into it modulo the period. The weights are
// integer tick counts, so the modulo-indexed rows are identical to the rows
// a full-run materialization would produce.
type Schedule struct {
	from      Rate
	to        Rate
	runLength int

	history int
	rows    [][]float64
}

// NewSchedule computes the weight schedule for resampling from a producer
// stepping every `from` ticks to a consumer stepping every `to` ticks over a
// run of runLength ticks. The run length must be an exact multiple of both
// rates.
func NewSchedule(from, to Rate, runLength int) (*Schedule, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("rates must be positive, got from=%d, to=%d",
			from, to)
	}

	if runLength <= 0 {
		return nil, fmt.Errorf("run length must be positive, got %d",
			runLength)
	}

	if runLength%int(from) != 0 || runLength%int(to) != 0 {
		return nil, fmt.Errorf(
			"run length %d is not a multiple of both rates %d and %d",
			runLength, from, to)
	}

	s := &Schedule{
		from:      from,
		to:        to,
		runLength: runLength,
		history:   historyBound(from, to),
	}

	if err := s.computeRows(); err != nil {
		return nil, err
	}

	return s, nil
}

// historyBound is the number of producer steps any single consumer step can
// overlap.
func historyBound(from, to Rate) int {
	if to >= from {
		return int((to + from - 1) / from)
	}

	if from%to != 0 {
		return 2
	}

	return 1
}

func (s *Schedule) computeRows() error {
	period := int(lcm(s.from, s.to) / s.to)
	s.rows = make([][]float64, period)

	maxCount := 0

	for m := 0; m < period; m++ {
		row, count, err := s.computeRow(m)
		if err != nil {
			return err
		}

		s.rows[m] = row
		maxCount = max(maxCount, count)
	}

	if maxCount != s.history {
		return fmt.Errorf(
			"history %d does not match the longest row %d (from=%d, to=%d)",
			s.history, maxCount, s.from, s.to)
	}

	return nil
}

// computeRow builds the weight row for consumer step m, oldest producer step
// first, left-padded with zeros to the schedule's history.
func (s *Schedule) computeRow(m int) ([]float64, int, error) {
	from, to := int(s.from), int(s.to)
	start := m * to
	end := start + to

	first := start / from
	last := (end - 1) / from

	count := last - first + 1
	if count > s.history {
		return nil, 0, fmt.Errorf(
			"row %d needs %d weights but history is %d (from=%d, to=%d)",
			m, count, s.history, s.from, s.to)
	}

	row := make([]float64, s.history)
	sum := 0

	for n := first; n <= last; n++ {
		lo := max(start, n*from)
		hi := min(end, (n+1)*from)

		w := hi - lo
		row[s.history-count+(n-first)] = float64(w)
		sum += w
	}

	if sum != to {
		log.Panicf("row %d sums to %d, want %d", m, sum, to)
	}

	return row, count, nil
}

// From returns the producer rate.
func (s *Schedule) From() Rate {
	return s.from
}

// To returns the consumer rate.
func (s *Schedule) To() Rate {
	return s.to
}

// History returns the number of most-recent producer values a buffer must
// retain to satisfy every row of the schedule.
func (s *Schedule) History() int {
	return s.history
}

// Len returns the number of consumer steps in the run.
func (s *Schedule) Len() int {
	return s.runLength / int(s.to)
}

// Period returns the number of consumer steps after which the rows repeat.
func (s *Schedule) Period() int {
	return len(s.rows)
}

// Row returns the weight row for consumer step m, oldest first. The last
// entry weighs the most recently produced value. The returned slice is
// shared; callers must not modify it.
func (s *Schedule) Row(m int) []float64 {
	if m < 0 || m >= s.Len() {
		log.Panicf("consumer step %d out of range [0, %d)", m, s.Len())
	}

	return s.rows[m%len(s.rows)]
}
