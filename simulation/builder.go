package simulation

import (
	"github.com/esmlab/coupler/coupling"
	"github.com/esmlab/coupler/dump"
	"github.com/esmlab/coupler/exchange"
	"github.com/esmlab/coupler/regrid"
	"github.com/esmlab/coupler/stream"
)

// Builder can be used to build a simulation from a validated configuration.
type Builder struct {
	cfg       *coupling.Config
	dumpPath  string
	sink      stream.Sink
	regridder regrid.Regridder

	resume          bool
	resumeDumpPath  string
	resumeTimestamp int64
	resumeStatePath string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		sink:            discardSink{},
		resumeTimestamp: dump.Latest,
	}
}

// WithConfig sets the run configuration to build from.
func (b Builder) WithConfig(cfg *coupling.Config) Builder {
	b.cfg = cfg
	return b
}

// WithDump enables checkpointing into a dump database at the given path.
func (b Builder) WithDump(path string) Builder {
	b.dumpPath = path
	return b
}

// WithSink sets the sink every recording stream emits to.
func (b Builder) WithSink(sink stream.Sink) Builder {
	b.sink = sink
	return b
}

// WithRegridder sets the spatial remapping collaborator.
func (b Builder) WithRegridder(r regrid.Regridder) Builder {
	b.regridder = r
	return b
}

// WithResumeFrom loads the exchange buffers from the snapshot at the given
// time in a prior dump. Pass dump.Latest for the most recent snapshot.
func (b Builder) WithResumeFrom(dumpPath string, timestamp int64) Builder {
	b.resume = true
	b.resumeDumpPath = dumpPath
	b.resumeTimestamp = timestamp

	return b
}

// WithResumeStreamState additionally restores stream windows from a state
// file written by Save.
func (b Builder) WithResumeStreamState(path string) Builder {
	b.resumeStatePath = path
	return b
}

// Build builds the simulation. All configuration errors surface here,
// before any tick runs.
func (b Builder) Build() (*Simulation, error) {
	if b.cfg == nil {
		panic("simulation built without a configuration")
	}

	s := &Simulation{
		cfg:     b.cfg,
		streams: make(map[string]*stream.Stream),
	}

	var registryOpts []exchange.RegistryOption

	if b.regridder != nil {
		registryOpts = append(registryOpts,
			exchange.WithRegridder(b.regridder))
	}

	if b.dumpPath != "" {
		s.writer = dump.NewWriter(b.dumpPath)
		registryOpts = append(registryOpts, exchange.WithDumpWriter(s.writer))
	}

	registry, err := exchange.NewRegistry(
		b.cfg.RunLength, b.cfg.TransferSpecs(), registryOpts...)
	if err != nil {
		return nil, err
	}

	s.registry = registry

	if err := b.buildStreams(s); err != nil {
		return nil, err
	}

	if b.resume {
		if err := b.restore(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) buildStreams(s *Simulation) error {
	gridSizes := make(map[string]int)
	for _, g := range b.cfg.Grids {
		gridSizes[g.Name] = g.Size
	}

	for _, sc := range b.cfg.Streams {
		st := stream.NewStream(sc.Name, sc.Window, b.sink,
			stream.WithRate(max(sc.Rate, 1)))

		for _, q := range sc.Quantities {
			var qOpts []stream.QuantityOption
			if q.Divisions > 1 {
				qOpts = append(qOpts, stream.WithDivisions(q.Divisions))
			}

			err := st.AddQuantity(
				q.Name, q.Units, gridSizes[q.Grid], q.Methods, qOpts...)
			if err != nil {
				return err
			}
		}

		s.streams[sc.Name] = st
		s.order = append(s.order, sc.Name)
	}

	return nil
}

func (b Builder) restore(s *Simulation) error {
	reader, err := dump.NewReader(b.resumeDumpPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	if err := s.registry.Restore(reader, b.resumeTimestamp); err != nil {
		return err
	}

	if b.resumeStatePath != "" {
		return s.loadStreamStates(b.resumeStatePath)
	}

	return nil
}
