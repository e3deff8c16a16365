// Package coupling loads and validates the YAML run configuration that
// declares the coupled components, the quantities they exchange, and the
// recording streams of a run, and lowers it into exchange specs.
package coupling

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/esmlab/coupler/exchange"
	"github.com/esmlab/coupler/reduce"
	"github.com/esmlab/coupler/regrid"
	"github.com/esmlab/coupler/timegrid"
)

// Config is the full run configuration.
type Config struct {
	RunLength  int               `yaml:"run_length"`
	Grids      []GridConfig      `yaml:"grids"`
	Components []ComponentConfig `yaml:"components"`
	Transfers  []TransferConfig  `yaml:"transfers"`
	Streams    []StreamConfig    `yaml:"streams"`
}

// GridConfig names a spatial grid and its cell count.
type GridConfig struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`
}

// ComponentConfig declares one coupled component: its stepping rate in fine
// clock ticks and the grid its fields live on.
type ComponentConfig struct {
	Name string `yaml:"name"`
	Rate int    `yaml:"rate"`
	Grid string `yaml:"grid"`
}

// TransferConfig declares one exchanged quantity. An empty producer
// declares a set-only boundary quantity; it then needs a grid of its own.
type TransferConfig struct {
	Name      string   `yaml:"name"`
	Method    string   `yaml:"method"`
	Producer  string   `yaml:"producer"`
	Consumers []string `yaml:"consumers"`
	Grid      string   `yaml:"grid"`
}

// StreamConfig declares one recording stream.
type StreamConfig struct {
	Name       string                 `yaml:"name"`
	Window     int                    `yaml:"window"`
	Rate       int                    `yaml:"rate"`
	Quantities []StreamQuantityConfig `yaml:"quantities"`
}

// StreamQuantityConfig declares one recorded quantity and the statistics
// requested for it.
type StreamQuantityConfig struct {
	Name      string   `yaml:"name"`
	Units     string   `yaml:"units"`
	Grid      string   `yaml:"grid"`
	Methods   []string `yaml:"methods"`
	Divisions int      `yaml:"divisions"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates a configuration.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Quantity and component names end up as database table names and map keys;
// keep them word-shaped.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Validate checks the configuration eagerly, before anything is built from
// it. Every error it can catch here would otherwise surface mid-setup.
func (c *Config) Validate() error {
	if c.RunLength <= 0 {
		return fmt.Errorf("run_length must be positive, got %d", c.RunLength)
	}

	grids := make(map[string]int)

	for _, g := range c.Grids {
		if !namePattern.MatchString(g.Name) {
			return fmt.Errorf("invalid grid name %q", g.Name)
		}

		if g.Size <= 0 {
			return fmt.Errorf("grid %s: size must be positive, got %d",
				g.Name, g.Size)
		}

		if _, ok := grids[g.Name]; ok {
			return fmt.Errorf("grid %s declared twice", g.Name)
		}

		grids[g.Name] = g.Size
	}

	components := make(map[string]ComponentConfig)

	for _, comp := range c.Components {
		if !namePattern.MatchString(comp.Name) {
			return fmt.Errorf("invalid component name %q", comp.Name)
		}

		if comp.Rate <= 0 {
			return fmt.Errorf("component %s: rate must be positive, got %d",
				comp.Name, comp.Rate)
		}

		if _, ok := grids[comp.Grid]; !ok {
			return fmt.Errorf("component %s: unknown grid %q",
				comp.Name, comp.Grid)
		}

		if _, ok := components[comp.Name]; ok {
			return fmt.Errorf("component %s declared twice", comp.Name)
		}

		components[comp.Name] = comp
	}

	if err := c.validateTransfers(grids, components); err != nil {
		return err
	}

	return c.validateStreams(grids)
}

func (c *Config) validateTransfers(
	grids map[string]int,
	components map[string]ComponentConfig,
) error {
	seen := make(map[string]bool)

	for _, t := range c.Transfers {
		if !namePattern.MatchString(t.Name) {
			return fmt.Errorf("invalid transfer name %q", t.Name)
		}

		if seen[t.Name] {
			return fmt.Errorf("transfer %s declared twice", t.Name)
		}

		seen[t.Name] = true

		if _, err := reduce.ParseMethod(t.Method); err != nil {
			return fmt.Errorf("transfer %s: %w", t.Name, err)
		}

		if err := c.validateTransferEnds(t, grids, components); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateTransferEnds(
	t TransferConfig,
	grids map[string]int,
	components map[string]ComponentConfig,
) error {
	if t.Producer == "" {
		if len(t.Consumers) > 0 {
			return fmt.Errorf(
				"transfer %s: consumers declared but no producer", t.Name)
		}

		if _, ok := grids[t.Grid]; !ok {
			return fmt.Errorf("boundary transfer %s: unknown grid %q",
				t.Name, t.Grid)
		}

		return nil
	}

	if _, ok := components[t.Producer]; !ok {
		return fmt.Errorf("transfer %s: unknown producer %q",
			t.Name, t.Producer)
	}

	for _, consumer := range t.Consumers {
		if _, ok := components[consumer]; !ok {
			return fmt.Errorf("transfer %s: unknown consumer %q",
				t.Name, consumer)
		}
	}

	return nil
}

func (c *Config) validateStreams(grids map[string]int) error {
	seen := make(map[string]bool)

	for _, s := range c.Streams {
		if !namePattern.MatchString(s.Name) {
			return fmt.Errorf("invalid stream name %q", s.Name)
		}

		if seen[s.Name] {
			return fmt.Errorf("stream %s declared twice", s.Name)
		}

		seen[s.Name] = true

		if s.Window <= 0 {
			return fmt.Errorf("stream %s: window must be positive, got %d",
				s.Name, s.Window)
		}

		for _, q := range s.Quantities {
			if !namePattern.MatchString(q.Name) {
				return fmt.Errorf("stream %s: invalid quantity name %q",
					s.Name, q.Name)
			}

			if _, ok := grids[q.Grid]; !ok {
				return fmt.Errorf("stream %s, quantity %s: unknown grid %q",
					s.Name, q.Name, q.Grid)
			}

			for _, m := range q.Methods {
				if _, err := reduce.ParseMethod(m); err != nil {
					return fmt.Errorf("stream %s, quantity %s: %w",
						s.Name, q.Name, err)
				}
			}
		}
	}

	return nil
}

// TransferSpecs lowers the configuration into the exchange specs the
// registry is built from. The configuration must have been validated.
func (c *Config) TransferSpecs() []exchange.TransferSpec {
	grids := make(map[string]regrid.Grid)
	for _, g := range c.Grids {
		grids[g.Name] = regrid.Grid{Name: g.Name, Size: g.Size}
	}

	components := make(map[string]ComponentConfig)
	for _, comp := range c.Components {
		components[comp.Name] = comp
	}

	specs := make([]exchange.TransferSpec, 0, len(c.Transfers))

	for _, t := range c.Transfers {
		spec := exchange.TransferSpec{
			Name:   t.Name,
			Method: t.Method,
		}

		if t.Producer == "" {
			spec.ProducerGrid = grids[t.Grid]
		} else {
			producer := components[t.Producer]
			spec.Producer = producer.Name
			spec.ProducerRate = timegrid.Rate(producer.Rate)
			spec.ProducerGrid = grids[producer.Grid]

			for _, consumerName := range t.Consumers {
				consumer := components[consumerName]
				spec.Consumers = append(spec.Consumers, exchange.ConsumerSpec{
					ID:   consumer.Name,
					Rate: timegrid.Rate(consumer.Rate),
					Grid: grids[consumer.Grid],
				})
			}
		}

		specs = append(specs, spec)
	}

	return specs
}
