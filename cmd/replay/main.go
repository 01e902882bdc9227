package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/engine"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
	"github.com/danielpatrickdp/fieldstate/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fieldstate.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	configPath := flag.String("config", "", "engine config YAML for DB mode (defaults used when empty)")
	graphPath := flag.String("graph", "", "adjacency graph YAML for DB mode (default fractal when empty)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/fieldstate.db")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *configPath, *graphPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

func runDBMode(dbPath, configPath, graphPath string) int {
	engCfg := engine.DefaultConfig()
	if configPath != "" {
		var err error
		engCfg, err = engine.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 2
		}
	}
	graphCfg := diffusion.BuildFractal(engCfg.Topology, 0.5, 0.25)
	if graphPath != "" {
		var err error
		graphCfg, err = diffusion.LoadConfig(graphPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load graph: %v\n", err)
			return 2
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	events, err := st.LoadJournal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load journal: %v\n", err)
		return 2
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, "no events in journal")
		return 2
	}

	return verify(engCfg, graphCfg, events, "")
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := engine.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	return verify(f.Config, f.Graph, f.Events, f.ExpectedHash)
}

// #endregion fixture-mode

// #region verify

// verify replays the events against a fresh engine, prints a per-event
// verification table, and returns the exit code: 0 all verified, 1 on
// divergence, 2 on structural failure.
func verify(cfg engine.Config, graphCfg diffusion.Config, events []journal.Event, expectedHash string) int {
	eng, err := engine.New(cfg, graphCfg, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		return 2
	}

	snap, replayErr := eng.Replay(events)

	failIndex := -1
	var replayFailure *journal.ReplayError
	if errors.As(replayErr, &replayFailure) {
		failIndex = replayFailure.Index
	} else if replayErr != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", replayErr)
		return 2
	}

	printTable(events, failIndex)

	if failIndex >= 0 {
		fmt.Printf("\nSummary: %d total, %d verified, diverged at event %d: %s\n",
			len(events), failIndex, failIndex, replayFailure.Reason)
		return 1
	}

	fmt.Printf("\nSummary: %d total, %d verified\n", len(events), len(events))
	fmt.Printf("final: tick=%d hash=%s\n", snap.Tick, snap.Hash())

	if expectedHash != "" && snap.Hash() != expectedHash {
		fmt.Printf("expected hash %s: DIFF\n", expectedHash)
		return 1
	}
	if expectedHash != "" {
		fmt.Println("expected hash: OK")
	}
	return 0
}

func printTable(events []journal.Event, failIndex int) {
	fmt.Printf("%-8s| %-6s| %-10s| %-10s| %-12s| %s\n", "Seq", "Tick", "Kind", "Dimension", "Motion", "Status")
	fmt.Printf("%-8s+%-7s+%-11s+%-11s+%-13s+%s\n",
		"--------", "-------", "-----------", "-----------", "-------------", "------")

	for i, ev := range events {
		status := "OK"
		switch {
		case failIndex >= 0 && i == failIndex:
			status = "DIFF"
		case failIndex >= 0 && i > failIndex:
			status = "SKIP"
		}
		fmt.Printf("%-8d| %-6d| %-10s| %-10s| %-12s| %s\n",
			ev.Seq, ev.Tick, ev.Kind, orDash(ev.Dimension), orDash(ev.Motion), status)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion verify
