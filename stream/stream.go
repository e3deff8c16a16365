// Package stream accumulates per-tick contributions of named quantities
// over fixed recording windows and, when every window fills, reduces each
// quantity to the summary statistics it requested and hands them to an
// external sink.
package stream

import (
	"errors"
	"fmt"

	"github.com/esmlab/coupler/reduce"
)

// Missing marks a window slot that has received no value.
const Missing = reduce.Missing

// ErrUnknownQuantity is returned when an update names a quantity the stream
// does not record.
var ErrUnknownQuantity = errors.New("unknown stream quantity")

// A Record is one reduced statistic emitted on flush. Values is scratch
// owned by the stream and reused for the next statistic of the same
// quantity; sinks must copy what they retain after Emit returns.
type Record struct {
	Name      string
	Units     string
	Method    reduce.Method
	Values    []float64
	Timestamp int64
}

// A Sink receives the records a stream emits. Implementations are external;
// the stream never retains a record after Emit returns, and a sink that
// retains one must copy its Values first.
type Sink interface {
	Emit(Record)
}

// A quantity is one recorded variable: its fixed window of per-tick values,
// the statistics requested for it, and its write tracker.
type quantity struct {
	name      string
	units     string
	methods   []reduce.Method
	size      int
	divisions int
	mask      []bool

	window  [][]float64
	tracker int
	out     []float64
}

func (q *quantity) width() int {
	if q.divisions > 1 {
		return q.size * q.divisions
	}

	return q.size
}

func (q *quantity) clear() {
	for _, slot := range q.window {
		for i := range slot {
			slot[i] = Missing
		}
	}

	q.tracker = 0
}

// A Stream owns a set of recorded quantities sharing one window length and
// one flush cadence. Updates are pushed per tick; the stream flushes
// autonomously once every quantity has received a full window of them.
type Stream struct {
	name         string
	windowLength int
	rate         int
	sink         Sink

	quantities map[string]*quantity
	order      []string

	triggerTotal   int
	triggerTracker int
	flushTracker   int
}

// A StreamOption configures a Stream at construction.
type StreamOption func(*Stream)

// WithRate sets the fine-tick length of one window slot, used to timestamp
// flushed records. The default is one tick per slot.
func WithRate(rate int) StreamOption {
	return func(s *Stream) {
		s.rate = rate
	}
}

// NewStream creates a recording stream flushing to the given sink every
// windowLength updates per quantity.
func NewStream(
	name string,
	windowLength int,
	sink Sink,
	opts ...StreamOption,
) *Stream {
	s := &Stream{
		name:         name,
		windowLength: windowLength,
		rate:         1,
		sink:         sink,
		quantities:   make(map[string]*quantity),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// A QuantityOption configures one recorded quantity.
type QuantityOption func(*quantity)

// WithDivisions adds an extra trailing shape, multiplying the per-tick
// width of the quantity. Vertical levels are the usual case.
func WithDivisions(d int) QuantityOption {
	return func(q *quantity) {
		q.divisions = d
	}
}

// WithMask declares a mask over the quantity's cells; masked-out cells are
// emitted as Missing.
func WithMask(mask []bool) QuantityOption {
	return func(q *quantity) {
		q.mask = mask
	}
}

// AddQuantity registers a quantity with the statistics it requests. Method
// names are resolved through the alias table here, at registration; an
// unknown alias is a configuration error and registers nothing.
func (s *Stream) AddQuantity(
	name, units string,
	size int,
	methodNames []string,
	opts ...QuantityOption,
) error {
	if _, ok := s.quantities[name]; ok {
		return fmt.Errorf("stream %s: quantity %s registered twice",
			s.name, name)
	}

	if len(methodNames) == 0 {
		return fmt.Errorf("stream %s: quantity %s requests no statistics",
			s.name, name)
	}

	methods := make([]reduce.Method, 0, len(methodNames))

	for _, mn := range methodNames {
		m, err := reduce.ParseMethod(mn)
		if err != nil {
			return fmt.Errorf("stream %s, quantity %s: %w", s.name, name, err)
		}

		methods = append(methods, m)
	}

	q := &quantity{
		name:    name,
		units:   units,
		methods: methods,
		size:    size,
	}

	for _, opt := range opts {
		opt(q)
	}

	if q.mask != nil && len(q.mask) != size {
		return fmt.Errorf(
			"stream %s: quantity %s mask covers %d cells, grid holds %d",
			s.name, name, len(q.mask), size)
	}

	q.window = make([][]float64, s.windowLength)
	for i := range q.window {
		q.window[i] = make([]float64, q.width())
	}

	q.out = make([]float64, q.width())
	q.clear()

	s.quantities[name] = q
	s.order = append(s.order, name)
	s.triggerTotal += s.windowLength

	return nil
}

// UpdateRecord writes one per-tick value into the quantity's window and
// advances the stream's flush tracking. When every quantity has received a
// full window's worth of updates, the stream flushes.
func (s *Stream) UpdateRecord(name string, values []float64) error {
	q, ok := s.quantities[name]
	if !ok {
		return fmt.Errorf("%w: %s on stream %s", ErrUnknownQuantity, name,
			s.name)
	}

	if len(values) != q.width() {
		return fmt.Errorf("stream %s: quantity %s holds %d cells, got %d",
			s.name, name, q.width(), len(values))
	}

	if q.tracker >= s.windowLength {
		return fmt.Errorf(
			"stream %s: quantity %s updated %d times in a %d-slot window",
			s.name, name, q.tracker+1, s.windowLength)
	}

	copy(q.window[q.tracker], values)
	q.tracker++
	s.triggerTracker++

	if s.triggerTracker == s.triggerTotal {
		s.flush()
	}

	return nil
}

// Flushes returns how many windows the stream has completed.
func (s *Stream) Flushes() int {
	return s.flushTracker
}

// Name returns the name of the stream.
func (s *Stream) Name() string {
	return s.name
}

// Quantities returns the recorded quantity names in registration order.
func (s *Stream) Quantities() []string {
	return s.order
}

// Finalise flushes a partially filled window, if any updates are pending,
// and must be called before teardown or those updates are lost.
func (s *Stream) Finalise() {
	if s.triggerTracker > 0 {
		s.flush()
	}
}

func (s *Stream) flush() {
	// A finalise flush may find the window only partially filled; the
	// record then covers the updates actually received, not the full
	// window.
	filled := 0
	for _, q := range s.quantities {
		filled = max(filled, q.tracker)
	}

	timestamp := int64(s.flushTracker*s.windowLength+filled) * int64(s.rate)
	s.flushTracker++

	for _, name := range s.order {
		q := s.quantities[name]
		s.flushQuantity(q, timestamp)
		q.clear()
	}

	s.triggerTracker = 0
}

func (s *Stream) flushQuantity(q *quantity, timestamp int64) {
	for _, m := range q.methods {
		switch m {
		case reduce.Point:
			if q.tracker == 0 {
				continue
			}

			copy(q.out, q.window[q.tracker-1])
		default:
			reduce.Window(m, q.out, q.window[:q.tracker])
		}

		if q.mask != nil {
			s.applyMask(q)
		}

		s.sink.Emit(Record{
			Name:      q.name,
			Units:     q.units,
			Method:    m,
			Values:    q.out,
			Timestamp: timestamp,
		})
	}
}

// applyMask blanks masked-out cells. With divisions, the mask covers the
// spatial cells and repeats across each division.
func (s *Stream) applyMask(q *quantity) {
	for i := range q.out {
		if !q.mask[i%q.size] {
			q.out[i] = Missing
		}
	}
}
