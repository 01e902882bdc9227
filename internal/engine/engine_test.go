package engine

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
	"github.com/danielpatrickdp/fieldstate/internal/motion"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Topology = field.Topology{DomainsPerDimension: 2, IndicatorsPerDomain: 2}
	return cfg
}

// newTestEngine builds an engine with no adjacency edges, so motion effects
// are exact and easy to assert against.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(testConfig(), diffusion.Config{PropagationFactor: 0.25}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

// newFractalEngine builds an engine on the generated fractal graph, for
// tests that exercise propagation and replay.
func newFractalEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := testConfig()
	graphCfg := diffusion.BuildFractal(cfg.Topology, 0.5, 0.25)
	eng, err := New(cfg, graphCfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func TestApplyMotionFromBaseline(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.ApplyMotion(field.Capital, motion.Acquire, 0.5)
	if err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}

	ch, ok := result.Effects["capital"]
	if !ok {
		t.Fatal("expected effect on core node")
	}
	if ch.Old != 0 || ch.New != 0.5 {
		t.Fatalf("expected 0 -> 0.5, got %v -> %v", ch.Old, ch.New)
	}

	if result.Event.Seq != 1 || result.Event.Kind != journal.KindMotion {
		t.Fatalf("unexpected event: %+v", result.Event)
	}
	if result.Event.Dimension != "capital" || result.Event.Motion != "acquire" {
		t.Fatalf("event must carry canonical names: %+v", result.Event)
	}
	if result.Event.SnapshotHash == "" {
		t.Fatal("event must record the resulting snapshot hash")
	}
	if got := len(eng.Journal()); got != 1 {
		t.Fatalf("expected exactly 1 journal entry, got %d", got)
	}
}

func TestApplyMotionClampsUnderRepetition(t *testing.T) {
	eng := newTestEngine(t)

	for i := 0; i < 10; i++ {
		if _, err := eng.ApplyMotion(field.Capital, motion.Acquire, 1.0); err != nil {
			t.Fatalf("ApplyMotion %d: %v", i, err)
		}
	}

	n, err := eng.GetNode("capital")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if n.Value != 1.0 {
		t.Fatalf("expected clamp at 1.0, got %v", n.Value)
	}
	for _, node := range eng.ListNodes() {
		if node.Value < 0 || node.Value > 1 {
			t.Fatalf("node %s outside [0,1]: %v", node.ID, node.Value)
		}
	}
}

func TestApplyMotionUnknownEnums(t *testing.T) {
	eng := newTestEngine(t)
	before := eng.Snapshot()

	_, err := eng.ApplyMotion(field.Dimension(99), motion.Acquire, 0.5)
	var nf *field.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	_, err = eng.ApplyMotion(field.Capital, motion.Motion(99), 0.5)
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	if len(eng.Journal()) != 0 {
		t.Fatal("failed apply must not log an event")
	}
	if !eng.Snapshot().Equal(before) {
		t.Fatal("failed apply must not mutate state")
	}
}

func TestApplyMotionWarnsOnInsaneDelta(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.ApplyMotion(field.Capital, motion.Acquire, 7.5)
	if err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	if result.Warning == "" {
		t.Fatal("expected warning for delta above sane range")
	}
	if result.Effects["capital"].New != 1.0 {
		t.Fatalf("insane delta still applied and clamped, got %v", result.Effects["capital"].New)
	}
}

func TestApplyMotionPropagatesAcrossGraph(t *testing.T) {
	eng := newFractalEngine(t)

	result, err := eng.ApplyMotion(field.Capital, motion.Acquire, 0.4)
	if err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}

	// core delta 0.4 spreads to each domain: 0.4 * (0.5/2) * 0.25 = 0.025
	ch, ok := result.Effects["capital.1"]
	if !ok {
		t.Fatal("expected propagation effect on capital.1")
	}
	if math.Abs(ch.New-0.025) > 1e-12 {
		t.Fatalf("expected 0.025 on domain node, got %v", ch.New)
	}

	// single pass: the indicator tier is untouched in the same call
	n, _ := eng.GetNode("capital.1.1")
	if n.Value != 0 {
		t.Fatalf("expected no second hop within one apply, got %v", n.Value)
	}
}

func TestTickDecaysAndLogs(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := eng.ApplyMotion(field.Capital, motion.Acquire, 0.5); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}

	deltas, event := eng.Tick()

	if eng.CurrentTick() != 1 {
		t.Fatalf("expected tick 1, got %d", eng.CurrentTick())
	}
	if deltas[field.Capital] >= 0 {
		t.Fatalf("expected negative decay delta for capital, got %v", deltas[field.Capital])
	}

	// 0.5 * (1 - 0.02) = 0.49
	n, _ := eng.GetNode("capital")
	if math.Abs(n.Value-0.49) > 1e-12 {
		t.Fatalf("expected 0.49, got %v", n.Value)
	}

	// the returned event is the appended tick marker itself
	if event.Kind != journal.KindTick || event.Tick != 1 || event.Seq != 2 {
		t.Fatalf("unexpected tick event: %+v", event)
	}
	if event.SnapshotHash == "" {
		t.Fatal("tick event must record the resulting snapshot hash")
	}
	events := eng.Journal()
	if events[len(events)-1] != event {
		t.Fatalf("returned event must match the journal tail: %+v vs %+v", event, events[len(events)-1])
	}
}

func TestGateSyncTracksMutations(t *testing.T) {
	eng := newTestEngine(t)

	// lift every node of the dimension above the open threshold
	if _, err := eng.ApplyMotion(field.Energy, motion.Recover, 0.7); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	gates := eng.EvaluateGates()
	if !gates[field.Energy].Open {
		t.Fatalf("expected energy gate open at aggregate %v", gates[field.Energy].Score)
	}
	if gates[field.Capital].Open {
		t.Fatal("expected capital gate closed")
	}

	// drop below the close threshold
	if _, err := eng.ApplyMotion(field.Energy, motion.Exert, 0.5); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	if eng.EvaluateGates()[field.Energy].Open {
		t.Fatal("expected energy gate closed after drop")
	}
}

func TestEntropyDecreasesTowardIdeal(t *testing.T) {
	eng := newTestEngine(t)

	before := eng.Entropy()
	if _, err := eng.ApplyMotion(field.Capital, motion.Recover, 0.5); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	after := eng.Entropy()
	if after >= before {
		t.Fatalf("moving toward ideal must reduce entropy: %v then %v", before, after)
	}
}

func TestResetRestoresBaselineAndDrainsJournal(t *testing.T) {
	eng := newTestEngine(t)
	if _, err := eng.ApplyMotion(field.Energy, motion.Recover, 0.8); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	eng.Tick()

	drained := eng.Reset()

	if len(drained) != 2 {
		t.Fatalf("expected 2 drained events, got %d", len(drained))
	}
	if len(eng.Journal()) != 0 {
		t.Fatal("journal must be empty after reset")
	}
	if eng.CurrentTick() != 0 {
		t.Fatalf("expected tick 0, got %d", eng.CurrentTick())
	}
	for d, v := range eng.GetState() {
		if v != 0 {
			t.Fatalf("dimension %s not at baseline: %v", d, v)
		}
	}
	for d, st := range eng.EvaluateGates() {
		if st.Open {
			t.Fatalf("gate %s open after reset", d)
		}
	}
}

func TestSnapshotLoadRoundtrip(t *testing.T) {
	src := newTestEngine(t)
	if _, err := src.ApplyMotion(field.Energy, motion.Recover, 0.7); err != nil {
		t.Fatalf("ApplyMotion: %v", err)
	}
	src.Tick()
	snap := src.Snapshot()

	dst := newTestEngine(t)
	if err := dst.Load(snap); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !dst.Snapshot().Equal(snap) {
		t.Fatal("loaded snapshot must match the source exactly")
	}
	if dst.CurrentTick() != src.CurrentTick() {
		t.Fatalf("tick mismatch: %d vs %d", dst.CurrentTick(), src.CurrentTick())
	}
	if !dst.EvaluateGates()[field.Energy].Open {
		t.Fatal("gate state must survive the roundtrip")
	}
}

func TestLoadRejectsWrongCardinality(t *testing.T) {
	eng := newTestEngine(t)
	err := eng.Load(field.Snapshot{Tick: 1, Values: []float64{0.5}})
	if err == nil {
		t.Fatal("expected error for wrong value count")
	}
}
