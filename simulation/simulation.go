// Package simulation ties one coupled run together: it owns the exchange
// registry and the recording streams built from a configuration, and it
// handles checkpointing and resume.
package simulation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/esmlab/coupler/coupling"
	"github.com/esmlab/coupler/dump"
	"github.com/esmlab/coupler/exchange"
	"github.com/esmlab/coupler/stream"
)

// A Simulation provides the services a coupled run requires: routed
// exchanges, recording streams, and persistence.
type Simulation struct {
	cfg      *coupling.Config
	registry *exchange.Registry
	streams  map[string]*stream.Stream
	order    []string
	writer   *dump.Writer
}

// Registry returns the exchange registry of the run.
func (s *Simulation) Registry() *exchange.Registry {
	return s.registry
}

// Stream returns a recording stream by name.
func (s *Simulation) Stream(name string) (*stream.Stream, bool) {
	st, ok := s.streams[name]
	return st, ok
}

// Streams returns the stream names in declaration order.
func (s *Simulation) Streams() []string {
	return s.order
}

// Checkpoint appends every transfer's newest value to the dump, keyed by
// the given simulation time.
func (s *Simulation) Checkpoint(timestamp int64) {
	s.registry.Dump(timestamp)
}

// Save writes the stream states, raw windows and trackers included, to a
// JSON file, so a resumed run continues mid-window without repeating or
// skipping contributions.
func (s *Simulation) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	states := make(map[string]*stream.State)
	for name, st := range s.streams {
		states[name] = st.State()
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)

	return encoder.Encode(states)
}

func (s *Simulation) loadStreamStates(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	states := map[string]*stream.State{}
	if err := decoder.Decode(&states); err != nil {
		return err
	}

	for name, state := range states {
		st, ok := s.streams[name]
		if !ok {
			return fmt.Errorf("state file names unknown stream %s", name)
		}

		if err := st.SetState(state); err != nil {
			return err
		}
	}

	return nil
}

// Finalise performs the mandatory final persistence append at the given
// simulation time and flushes every stream's pending window. Skipping it
// loses buffered-but-unflushed state.
func (s *Simulation) Finalise(timestamp int64) {
	for _, name := range s.order {
		s.streams[name].Finalise()
	}

	s.registry.Finalise(timestamp)
}

type discardSink struct{}

func (discardSink) Emit(stream.Record) {}
