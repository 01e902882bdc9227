package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/engine"
	"github.com/danielpatrickdp/fieldstate/internal/store"
)

// #region main

// fixture-export captures a recorded run from a live database as a
// self-contained JSON fixture that `replay --fixture` can verify offline.
func main() {
	dbPath := flag.String("db", "fieldstate.db", "path to the state database")
	out := flag.String("out", "fixture.json", "output path for the fixture JSON")
	configPath := flag.String("config", "", "engine config YAML (defaults used when empty)")
	graphPath := flag.String("graph", "", "adjacency graph YAML (default fractal when empty)")
	desc := flag.String("desc", "", "fixture description")
	flag.Parse()

	if err := run(*dbPath, *out, *configPath, *graphPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "fixture-export: %v\n", err)
		os.Exit(2)
	}
}

func run(dbPath, out, configPath, graphPath, desc string) error {
	engCfg := engine.DefaultConfig()
	if configPath != "" {
		var err error
		engCfg, err = engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}
	graphCfg := diffusion.BuildFractal(engCfg.Topology, 0.5, 0.25)
	if graphPath != "" {
		var err error
		graphCfg, err = diffusion.LoadConfig(graphPath)
		if err != nil {
			return err
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.LoadJournal()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events in journal")
	}

	// Replay before exporting so the fixture's expected hash is known good.
	eng, err := engine.New(engCfg, graphCfg, zap.NewNop())
	if err != nil {
		return err
	}
	snap, err := eng.Replay(events)
	if err != nil {
		return err
	}

	f := &engine.Fixture{
		Description:  desc,
		Config:       engCfg,
		Graph:        graphCfg,
		Events:       events,
		ExpectedHash: snap.Hash(),
	}
	if err := engine.SaveFixture(out, f); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d events, final tick %d, hash %s\n", out, len(events), snap.Tick, snap.Hash())
	return nil
}

// #endregion main
