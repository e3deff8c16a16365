package exchange

import (
	"errors"
	"fmt"

	"github.com/esmlab/coupler/dump"
	"github.com/esmlab/coupler/reduce"
	"github.com/esmlab/coupler/regrid"
)

// ErrUnknownTransfer is returned when a get or set names a quantity the
// registry does not own.
var ErrUnknownTransfer = errors.New("unknown transfer")

// ErrUnknownConsumer is returned when a get names a consumer the transfer
// was not declared with.
var ErrUnknownConsumer = errors.New("unknown consumer")

// ErrNoProducer is returned when a get targets a boundary transfer, which
// has no producer history to reduce.
var ErrNoProducer = errors.New("transfer has no producer")

// A Registry owns the set of Transfers of one simulation run and routes all
// get and set calls. It is built once at setup from the union of the
// components' declared quantities and delegates spatial remapping and
// persistence to external collaborators.
type Registry struct {
	transfers map[string]*Transfer
	order     []string
	runLength int

	regridder regrid.Regridder
	writer    *dump.Writer
}

// A RegistryOption configures optional registry collaborators.
type RegistryOption func(*Registry)

// WithRegridder sets the spatial remapping collaborator invoked when a
// consumer's grid differs from the producer's.
func WithRegridder(r regrid.Regridder) RegistryOption {
	return func(reg *Registry) {
		reg.regridder = r
	}
}

// WithDumpWriter sets the persistence adapter that snapshots receive.
func WithDumpWriter(w *dump.Writer) RegistryOption {
	return func(reg *Registry) {
		reg.writer = w
	}
}

// NewRegistry builds the registry for one run. Configuration problems, such
// as unknown reduction methods or rate combinations that do not divide the
// run length, abort construction here.
func NewRegistry(
	runLength int,
	specs []TransferSpec,
	opts ...RegistryOption,
) (*Registry, error) {
	reg := &Registry{
		transfers: make(map[string]*Transfer),
		runLength: runLength,
	}

	for _, opt := range opts {
		opt(reg)
	}

	for _, spec := range specs {
		if _, ok := reg.transfers[spec.Name]; ok {
			return nil, fmt.Errorf("transfer %s declared twice", spec.Name)
		}

		t, err := newTransfer(spec, runLength)
		if err != nil {
			return nil, err
		}

		reg.transfers[spec.Name] = t
		reg.order = append(reg.order, spec.Name)

		if reg.writer != nil {
			reg.writer.CreateQuantity(spec.Name)
		}
	}

	return reg, nil
}

// RunLength returns the run length, in fine clock ticks, the registry was
// built for.
func (r *Registry) RunLength() int {
	return r.runLength
}

// Transfers returns the transfer names in declaration order.
func (r *Registry) Transfers() []string {
	return r.order
}

// Transfer returns a transfer by name.
func (r *Registry) Transfer(name string) (*Transfer, bool) {
	t, ok := r.transfers[name]
	return t, ok
}

// Get reduces the named transfer's history for one consumer and advances
// that consumer's iteration. The result passes through the spatial
// remapping collaborator when the consumer's grid differs from the
// producer's, then through the consumer's mask if one is declared.
//
// The returned slice is scratch owned by the registry; callers must copy
// what they retain across ticks.
func (r *Registry) Get(name, consumerID string) ([]float64, error) {
	t, ok := r.transfers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransfer, name)
	}

	if t.producer == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoProducer, name)
	}

	cs, ok := t.consumers[consumerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s on transfer %s",
			ErrUnknownConsumer, consumerID, name)
	}

	values := t.get(cs)

	if !cs.grid.Equal(t.producerGrid) {
		if r.regridder == nil {
			return nil, fmt.Errorf(
				"transfer %s: consumer %s is on grid %s but no regridder is set",
				name, consumerID, cs.grid.Name)
		}

		remapped, err := r.regridder.Regrid(
			t.producerGrid, cs.grid, t.method, values)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: %w", name, err)
		}

		values = remapped
	}

	if cs.mask != nil {
		for i := range values {
			if !cs.mask[i] {
				values[i] = reduce.Missing
			}
		}
	}

	return values, nil
}

// Set rotates the named transfer's ring and writes the newly produced value
// into the current slot. The effect is visible to every consumer of the
// transfer.
func (r *Registry) Set(name string, values []float64) error {
	t, ok := r.transfers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTransfer, name)
	}

	t.set(values)

	return nil
}

// Update applies Set for every entry of the mapping. No ordering is
// guaranteed between independent names.
func (r *Registry) Update(values map[string][]float64) error {
	for name, v := range values {
		if err := r.Set(name, v); err != nil {
			return err
		}
	}

	return nil
}

// Dump appends every transfer's newest value to the persistence adapter,
// keyed by the given simulation time. Boundary transfers are included; they
// exist for exactly this.
func (r *Registry) Dump(timestamp int64) {
	if r.writer == nil {
		return
	}

	for _, name := range r.order {
		t := r.transfers[name]
		r.writer.Append(name, t.ring.At(0), timestamp)
	}
}

// Finalise performs the mandatory last persistence append with the final
// simulation time and flushes the adapter. Skipping it loses any state not
// yet flushed.
func (r *Registry) Finalise(timestamp int64) {
	if r.writer == nil {
		return
	}

	r.Dump(timestamp)
	r.writer.Flush()
}

// Restore loads the snapshot at the given time, or the latest one for
// dump.Latest, back into each transfer's freshly constructed ring. Missing
// quantities propagate the reader's not-found error unmodified.
func (r *Registry) Restore(reader *dump.Reader, timestamp int64) error {
	for _, name := range r.order {
		t := r.transfers[name]

		values, _, err := reader.Load(name, timestamp)
		if err != nil {
			return err
		}

		if len(values) != t.ring.Width() {
			return fmt.Errorf(
				"transfer %s: dump holds %d cells, ring holds %d",
				name, len(values), t.ring.Width())
		}

		t.ring.Rotate()
		t.ring.Write(values)
	}

	return nil
}
