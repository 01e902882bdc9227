package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/field"
)

func TestNewRejectsUnknownDimensionKeys(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Baselines["bogus"] = 0.5 },
		func(c *Config) { c.DecayRates["bogus"] = 0.5 },
		func(c *Config) { c.Gates["bogus"] = c.Gates["capital"] },
		func(c *Config) { c.Entropy.Ideal["bogus"] = 0.5 },
		func(c *Config) { c.Entropy.Weights["bogus"] = 0.5 },
	}
	for i, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		_, err := New(cfg, diffusion.Config{PropagationFactor: 0.25}, zap.NewNop())
		var cfgErr *field.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("case %d: expected ConfigurationError, got %v", i, err)
		}
	}
}

func TestConfigDefaultsFillGaps(t *testing.T) {
	// an almost-empty config resolves onto the package defaults
	cfg := Config{Baselines: map[string]float64{"capital": 0.2}}
	eng, err := New(cfg, diffusion.Config{PropagationFactor: 0.25}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n, err := eng.GetNode("capital.12.12")
	if err != nil {
		t.Fatalf("expected default 1:12:144 topology: %v", err)
	}
	if n.Value != 0.2 {
		t.Fatalf("expected configured baseline 0.2, got %v", n.Value)
	}
	n, _ = eng.GetNode("knowledge")
	if n.Value != 0 {
		t.Fatalf("expected default baseline 0, got %v", n.Value)
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	doc := `
topology:
  domains_per_dimension: 3
  indicators_per_domain: 2
decay_rates:
  capital: 0.1
gates:
  energy:
    open: 0.8
    close: 0.2
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Topology.DomainsPerDimension != 3 {
		t.Fatalf("expected 3 domains, got %d", cfg.Topology.DomainsPerDimension)
	}
	if cfg.DecayRates["capital"] != 0.1 {
		t.Fatalf("expected overridden rate 0.1, got %v", cfg.DecayRates["capital"])
	}
	if cfg.DecayRates["knowledge"] != 0.02 {
		t.Fatalf("expected default rate 0.02, got %v", cfg.DecayRates["knowledge"])
	}
	if cfg.Gates["energy"].Open != 0.8 {
		t.Fatalf("expected overridden gate band, got %+v", cfg.Gates["energy"])
	}
	if cfg.Gates["capital"].Open != 0.66 {
		t.Fatalf("expected default gate band, got %+v", cfg.Gates["capital"])
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFixtureRoundtrip(t *testing.T) {
	src := newFractalEngine(t)
	events := record(t, src)

	f := &Fixture{
		Description:  "mixed motion and tick history",
		Config:       testConfig(),
		Graph:        diffusion.BuildFractal(testConfig().Topology, 0.5, 0.25),
		Events:       events,
		ExpectedHash: src.Snapshot().Hash(),
	}

	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	eng, err := New(loaded.Config, loaded.Graph, zap.NewNop())
	if err != nil {
		t.Fatalf("New from fixture: %v", err)
	}
	snap, err := eng.Replay(loaded.Events)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if snap.Hash() != loaded.ExpectedHash {
		t.Fatalf("expected hash %s, got %s", loaded.ExpectedHash, snap.Hash())
	}
}
