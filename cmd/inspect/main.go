package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/engine"
	"github.com/danielpatrickdp/fieldstate/internal/report"
	"github.com/danielpatrickdp/fieldstate/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "fieldstate.db", "path to the state database")
	configPath := flag.String("config", "", "engine config YAML (defaults used when empty)")
	graphPath := flag.String("graph", "", "adjacency graph YAML (default fractal when empty)")
	tail := flag.Int("tail", 10, "journal entries to show")
	flag.Parse()

	if err := run(*dbPath, *configPath, *graphPath, *tail); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(2)
	}
}

func run(dbPath, configPath, graphPath string, tail int) error {
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

	eng, err := engine.New(engCfg, graphCfg, zap.NewNop())
	if err != nil {
		return err
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
	if len(events) > 0 {
		if _, err := eng.Replay(events); err != nil {
			return err
		}
	} else {
		snap, _, err := st.LatestSnapshot()
		if err != nil && !errors.Is(err, store.ErrNoSnapshot) {
			return err
		}
		if err == nil {
			if err := eng.Load(snap); err != nil {
				return err
			}
		}
	}

	fmt.Printf("tick %d\n\n", eng.CurrentTick())
	fmt.Print(report.RenderState(eng.GetState(), eng.EvaluateGates(), eng.Entropy()))
	fmt.Println()
	fmt.Print(report.RenderJournalTail(events, tail))
	return nil
}

// #endregion main
