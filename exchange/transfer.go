package exchange

import (
	"fmt"
	"log"

	"github.com/esmlab/coupler/reduce"
	"github.com/esmlab/coupler/regrid"
	"github.com/esmlab/coupler/timegrid"
)

// A TransferSpec declares one named exchanged quantity: who produces it, at
// what rate and on what grid, and which consumers read it with what
// reduction method. A spec with no producer declares a boundary quantity
// that is set-only and recorded for persistence.
type TransferSpec struct {
	Name         string
	Method       string
	Producer     string
	ProducerRate timegrid.Rate
	ProducerGrid regrid.Grid
	Consumers    []ConsumerSpec
}

// A ConsumerSpec declares one consumer of a transfer: its identity, rate,
// destination grid, and an optional mask selecting the cells it receives.
type ConsumerSpec struct {
	ID   string
	Rate timegrid.Rate
	Grid regrid.Grid
	Mask []bool
}

// consumerState holds the per-(transfer, consumer) exchange state: the
// weight schedule, the read iterator, and the consumer-side output scratch.
type consumerState struct {
	id       string
	schedule *timegrid.Schedule
	iter     int
	grid     regrid.Grid
	mask     []bool
	out      []float64
}

// A Transfer binds one named quantity to its reduction method, the ring
// holding its producer history, and the per-consumer schedules reading from
// that ring. All consumers share one ring sized to the deepest history any
// of them needs.
type Transfer struct {
	name         string
	method       reduce.Method
	producer     string
	producerGrid regrid.Grid
	ring         *Ring
	consumers    map[string]*consumerState
	setCount     int
	gathered     [][]float64
}

// newTransfer builds a Transfer from its spec. Unknown methods and
// incompatible rate combinations surface here, before any tick runs.
func newTransfer(spec TransferSpec, runLength int) (*Transfer, error) {
	method, err := reduce.ParseMethod(spec.Method)
	if err != nil {
		return nil, fmt.Errorf("transfer %s: %w", spec.Name, err)
	}

	t := &Transfer{
		name:         spec.Name,
		method:       method,
		producer:     spec.Producer,
		producerGrid: spec.ProducerGrid,
		consumers:    make(map[string]*consumerState),
	}

	history := 1

	for _, c := range spec.Consumers {
		if spec.Producer == "" {
			return nil, fmt.Errorf(
				"transfer %s: consumer %s declared but no producer",
				spec.Name, c.ID)
		}

		if _, ok := t.consumers[c.ID]; ok {
			return nil, fmt.Errorf("transfer %s: consumer %s declared twice",
				spec.Name, c.ID)
		}

		schedule, err := timegrid.NewSchedule(
			spec.ProducerRate, c.Rate, runLength)
		if err != nil {
			return nil, fmt.Errorf("transfer %s, consumer %s: %w",
				spec.Name, c.ID, err)
		}

		if c.Mask != nil && len(c.Mask) != c.Grid.Size {
			return nil, fmt.Errorf(
				"transfer %s, consumer %s: mask covers %d cells, grid %s holds %d",
				spec.Name, c.ID, len(c.Mask), c.Grid.Name, c.Grid.Size)
		}

		history = max(history, schedule.History())

		t.consumers[c.ID] = &consumerState{
			id:       c.ID,
			schedule: schedule,
			grid:     c.Grid,
			mask:     c.Mask,
			out:      make([]float64, spec.ProducerGrid.Size),
		}
	}

	t.ring = NewRing(spec.Name, history, spec.ProducerGrid.Size)
	t.gathered = make([][]float64, history)

	return t, nil
}

// Name returns the name of the exchanged quantity.
func (t *Transfer) Name() string {
	return t.name
}

// Method returns the reduction method bound to the transfer.
func (t *Transfer) Method() reduce.Method {
	return t.method
}

// History returns the depth of the producer history the transfer retains.
func (t *Transfer) History() int {
	return t.ring.History()
}

// Current returns a copy of the most recently set value.
func (t *Transfer) Current() []float64 {
	return append([]float64(nil), t.ring.At(0)...)
}

// set rotates the ring and writes the newly produced value into the current
// slot. Every consumer of the transfer observes the rotation.
func (t *Transfer) set(values []float64) {
	t.ring.Rotate()
	t.ring.Write(values)
	t.setCount++
}

// get reduces the ring for one consumer using the weight row at its current
// iteration, then advances the iteration.
//
// The producer's set for the current tick must have happened already; the
// engine does not detect a violation and would reduce stale history.
func (t *Transfer) get(cs *consumerState) []float64 {
	if cs.iter >= cs.schedule.Len() {
		log.Panicf("transfer %s: consumer %s read past the end of the run",
			t.name, cs.id)
	}

	row := cs.schedule.Row(cs.iter)
	h := cs.schedule.History()

	gathered := t.gathered[:h]
	for i := range gathered {
		gathered[i] = t.ring.At(i - (h - 1))
	}

	reduce.Weighted(t.method, cs.out, gathered, row,
		float64(cs.schedule.To()))

	cs.iter++

	return cs.out
}
