package engine

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
	"github.com/danielpatrickdp/fieldstate/internal/motion"
)

// record drives a recognizable mixed history of motions and ticks.
func record(t *testing.T, eng *Engine) []journal.Event {
	t.Helper()
	steps := []struct {
		d     field.Dimension
		m     motion.Motion
		delta float64
	}{
		{field.Capital, motion.Acquire, 0.5},
		{field.Knowledge, motion.Study, 0.3},
		{field.Energy, motion.Recover, 0.7},
		{field.Capital, motion.Divest, 0.1},
	}
	for i, s := range steps {
		if _, err := eng.ApplyMotion(s.d, s.m, s.delta); err != nil {
			t.Fatalf("ApplyMotion %d: %v", i, err)
		}
		if i%2 == 1 {
			eng.Tick()
		}
	}
	return eng.Journal()
}

func TestReplayReproducesStateBitIdentically(t *testing.T) {
	src := newFractalEngine(t)
	events := record(t, src)
	want := src.Snapshot()

	for run := 0; run < 2; run++ {
		eng := newFractalEngine(t)
		got, err := eng.Replay(events)
		if err != nil {
			t.Fatalf("Replay run %d: %v", run, err)
		}
		if !got.Equal(want) {
			t.Fatalf("replay run %d diverged from recorded state", run)
		}
		if !eng.Snapshot().Equal(want) {
			t.Fatalf("run %d: engine state not swapped to the replayed result", run)
		}
	}
}

func TestReplayInstallsTheEventLog(t *testing.T) {
	src := newFractalEngine(t)
	events := record(t, src)

	eng := newFractalEngine(t)
	if _, err := eng.Replay(events); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if got := len(eng.Journal()); got != len(events) {
		t.Fatalf("expected %d journal entries after replay, got %d", len(events), got)
	}
}

func TestReplayRejectsSequenceRegression(t *testing.T) {
	src := newFractalEngine(t)
	events := record(t, src)

	// duplicate an earlier sequence number mid-log
	bad := append([]journal.Event(nil), events...)
	bad[3].Seq = bad[1].Seq

	eng := newFractalEngine(t)
	if _, err := eng.ApplyMotion(field.Social, motion.Connect, 0.2); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	before := eng.Snapshot()

	_, err := eng.Replay(bad)
	var re *journal.ReplayError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReplayError, got %v", err)
	}
	if re.Index != 3 {
		t.Fatalf("expected failure at index 3, got %d", re.Index)
	}
	if !eng.Snapshot().Equal(before) {
		t.Fatal("failed replay must leave the engine untouched")
	}
}

func TestReplayRejectsUnknownNames(t *testing.T) {
	src := newFractalEngine(t)
	events := record(t, src)

	cases := []func([]journal.Event){
		func(ev []journal.Event) { ev[0].Dimension = "charisma" },
		func(ev []journal.Event) { ev[0].Motion = "meditate" },
		func(ev []journal.Event) { ev[0].Kind = "checkpoint" },
	}
	for i, mutate := range cases {
		bad := append([]journal.Event(nil), events...)
		mutate(bad)

		eng := newFractalEngine(t)
		_, err := eng.Replay(bad)
		var re *journal.ReplayError
		if !errors.As(err, &re) {
			t.Fatalf("case %d: expected ReplayError, got %v", i, err)
		}
		if re.Index != 0 {
			t.Fatalf("case %d: expected failure at index 0, got %d", i, re.Index)
		}
	}
}

func TestReplayVerifiesSnapshotHashes(t *testing.T) {
	src := newFractalEngine(t)
	events := record(t, src)

	bad := append([]journal.Event(nil), events...)
	bad[1].Delta = 0.9 // state diverges, recorded hash no longer matches

	eng := newFractalEngine(t)
	_, err := eng.Replay(bad)
	var re *journal.ReplayError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReplayError, got %v", err)
	}
	if re.Index != 1 {
		t.Fatalf("expected failure at index 1, got %d", re.Index)
	}
}

func TestReplayEmptyLogYieldsBaseline(t *testing.T) {
	eng := newFractalEngine(t)
	if _, err := eng.ApplyMotion(field.Capital, motion.Acquire, 0.5); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}

	snap, err := eng.Replay(nil)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if snap.Tick != 0 {
		t.Fatalf("expected baseline tick 0, got %d", snap.Tick)
	}
	for i, v := range snap.Values {
		if v != 0 {
			t.Fatalf("expected baseline value at node %d, got %v", i, v)
		}
	}
	if len(eng.Journal()) != 0 {
		t.Fatal("replaying an empty log must clear the journal")
	}
}
