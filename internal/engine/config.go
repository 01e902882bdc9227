package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/fieldstate/internal/decay"
	"github.com/danielpatrickdp/fieldstate/internal/entropy"
	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/gate"
)

// #region config

// EntropySettings configures the divergence metric, keyed by dimension name.
type EntropySettings struct {
	Ideal   map[string]float64 `yaml:"ideal" json:"ideal"`
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// Config bundles every construction-time parameter of the engine. All maps
// are keyed by canonical dimension name; dimensions left out keep their
// defaults, unknown names are a ConfigurationError.
type Config struct {
	Topology     field.Topology             `yaml:"topology" json:"topology"`
	Baselines    map[string]float64         `yaml:"baselines" json:"baselines"`
	DecayRates   map[string]float64         `yaml:"decay_rates" json:"decay_rates"`
	Gates        map[string]gate.Thresholds `yaml:"gates" json:"gates"`
	Entropy      EntropySettings            `yaml:"entropy" json:"entropy"`
	MaxSaneDelta float64                    `yaml:"max_sane_delta" json:"max_sane_delta"`
}

// DefaultConfig returns the full default parameter set: 1:12:144 topology,
// zero baselines, 2% decay, 0.66/0.33 gate bands, ideal 1.0 everywhere.
func DefaultConfig() Config {
	cfg := Config{
		Topology:     field.DefaultTopology(),
		Baselines:    make(map[string]float64),
		DecayRates:   make(map[string]float64),
		Gates:        make(map[string]gate.Thresholds),
		MaxSaneDelta: 1.0,
		Entropy: EntropySettings{
			Ideal:   make(map[string]float64),
			Weights: make(map[string]float64),
		},
	}
	for _, d := range field.Dimensions() {
		cfg.Baselines[d.String()] = 0
		cfg.DecayRates[d.String()] = 0.02
		cfg.Gates[d.String()] = gate.Thresholds{Open: 0.66, Close: 0.33}
		cfg.Entropy.Ideal[d.String()] = 1.0
		cfg.Entropy.Weights[d.String()] = 1.0
	}
	return cfg
}

// LoadConfig reads a YAML engine configuration, merged over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read engine config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse engine config %s: %w", path, err)
	}
	return cfg, nil
}

// #endregion config

// #region resolve

// resolved is the Config lowered onto the fixed dimension enumeration.
type resolved struct {
	topo      field.Topology
	baselines [field.DimensionCount]float64
	decay     decay.Config
	gates     gate.Config
	entropy   entropy.Config
	maxSane   float64
}

func overlay(m map[string]float64, out *[field.DimensionCount]float64, name string) error {
	for key, v := range m {
		d, err := field.ParseDimension(key)
		if err != nil {
			return &field.ConfigurationError{Field: name, Reason: fmt.Sprintf("unknown dimension %q", key)}
		}
		out[d] = v
	}
	return nil
}

func (c Config) resolve() (resolved, error) {
	r := resolved{
		topo:    c.Topology,
		decay:   decay.DefaultConfig(),
		gates:   gate.DefaultConfig(),
		entropy: entropy.DefaultConfig(),
		maxSane: c.MaxSaneDelta,
	}
	if r.topo == (field.Topology{}) {
		r.topo = field.DefaultTopology()
	}
	if r.maxSane <= 0 {
		r.maxSane = 1.0
	}

	if err := overlay(c.Baselines, &r.baselines, "baselines"); err != nil {
		return resolved{}, err
	}
	if err := overlay(c.DecayRates, &r.decay.Rates, "decay_rates"); err != nil {
		return resolved{}, err
	}
	if err := overlay(c.Entropy.Ideal, &r.entropy.Ideal, "entropy.ideal"); err != nil {
		return resolved{}, err
	}
	if err := overlay(c.Entropy.Weights, &r.entropy.Weights, "entropy.weights"); err != nil {
		return resolved{}, err
	}
	for key, band := range c.Gates {
		d, err := field.ParseDimension(key)
		if err != nil {
			return resolved{}, &field.ConfigurationError{Field: "gates", Reason: fmt.Sprintf("unknown dimension %q", key)}
		}
		r.gates.Bands[d] = band
	}
	return r, nil
}

// #endregion resolve
