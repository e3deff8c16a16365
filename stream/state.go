package stream

import "fmt"

// A State captures everything a stream needs to continue mid-window after a
// restart: the raw, possibly partial, windows and every tracker. It is
// plain data, fit for JSON encoding.
type State struct {
	TriggerTracker int                      `json:"trigger_tracker"`
	FlushTracker   int                      `json:"flush_tracker"`
	Quantities     map[string]QuantityState `json:"quantities"`
}

// A QuantityState is the raw window and write tracker of one quantity.
type QuantityState struct {
	Window  [][]float64 `json:"window"`
	Tracker int         `json:"tracker"`
}

// State snapshots the stream. The returned windows are copies; mutating
// them does not touch the live stream.
func (s *Stream) State() *State {
	st := &State{
		TriggerTracker: s.triggerTracker,
		FlushTracker:   s.flushTracker,
		Quantities:     make(map[string]QuantityState),
	}

	for name, q := range s.quantities {
		window := make([][]float64, len(q.window))
		for i, slot := range q.window {
			window[i] = append([]float64(nil), slot...)
		}

		st.Quantities[name] = QuantityState{
			Window:  window,
			Tracker: q.tracker,
		}
	}

	return st
}

// SetState restores a snapshot taken by State. The stream must have been
// built with the same quantity registrations the snapshot was taken with.
func (s *Stream) SetState(st *State) error {
	if len(st.Quantities) != len(s.quantities) {
		return fmt.Errorf(
			"stream %s: snapshot holds %d quantities, stream holds %d",
			s.name, len(st.Quantities), len(s.quantities))
	}

	for name, qs := range st.Quantities {
		q, ok := s.quantities[name]
		if !ok {
			return fmt.Errorf("%w: %s in snapshot of stream %s",
				ErrUnknownQuantity, name, s.name)
		}

		if len(qs.Window) != len(q.window) {
			return fmt.Errorf(
				"stream %s: snapshot window of %s has %d slots, want %d",
				s.name, name, len(qs.Window), len(q.window))
		}

		for i, slot := range qs.Window {
			if len(slot) != q.width() {
				return fmt.Errorf(
					"stream %s: snapshot slot of %s has %d cells, want %d",
					s.name, name, len(slot), q.width())
			}

			copy(q.window[i], slot)
		}

		q.tracker = qs.Tracker
	}

	s.triggerTracker = st.TriggerTracker
	s.flushTracker = st.FlushTracker

	return nil
}
