package gate

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/fieldstate/internal/field"
)

func makeEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func aggs(capital float64) [field.DimensionCount]float64 {
	var a [field.DimensionCount]float64
	a[field.Capital] = capital
	return a
}

func TestGatesStartClosed(t *testing.T) {
	e := makeEvaluator(t)
	for d, st := range e.EvaluateAll(aggs(0)) {
		if st.Open {
			t.Fatalf("gate %s must start closed", d)
		}
	}
}

func TestGateOpensAtThreshold(t *testing.T) {
	e := makeEvaluator(t)

	if flipped := e.Sync(aggs(0.65)); len(flipped) != 0 {
		t.Fatalf("gate flipped below open threshold: %v", flipped)
	}
	flipped := e.Sync(aggs(0.66))
	if len(flipped) != 1 || flipped[0] != field.Capital {
		t.Fatalf("expected capital to flip, got %v", flipped)
	}
	if !e.States()[field.Capital] {
		t.Fatal("expected capital gate open")
	}
}

func TestGateHysteresisBandIsSticky(t *testing.T) {
	e := makeEvaluator(t)
	e.Sync(aggs(0.8)) // open

	// oscillate strictly inside (close, open): no transitions
	for _, v := range []float64{0.34, 0.65, 0.4, 0.5, 0.64, 0.34} {
		if flipped := e.Sync(aggs(v)); len(flipped) != 0 {
			t.Fatalf("gate flipped inside hysteresis band at %v", v)
		}
		if !e.States()[field.Capital] {
			t.Fatalf("gate closed inside band at %v", v)
		}
	}

	// same band, starting closed
	e2 := makeEvaluator(t)
	for _, v := range []float64{0.34, 0.65, 0.4} {
		if flipped := e2.Sync(aggs(v)); len(flipped) != 0 {
			t.Fatalf("closed gate flipped inside band at %v", v)
		}
	}
}

func TestGateClosesBelowCloseThreshold(t *testing.T) {
	e := makeEvaluator(t)
	e.Sync(aggs(0.8))

	if flipped := e.Sync(aggs(0.33)); len(flipped) != 0 {
		t.Fatal("gate must stay open at exactly the close threshold")
	}
	flipped := e.Sync(aggs(0.32))
	if len(flipped) != 1 || flipped[0] != field.Capital {
		t.Fatalf("expected capital to close, got %v", flipped)
	}
	if e.States()[field.Capital] {
		t.Fatal("expected capital gate closed")
	}
}

func TestGateSingleExcursionFlipsOnce(t *testing.T) {
	e := makeEvaluator(t)

	total := 0
	for _, v := range []float64{0.1, 0.5, 0.7, 0.9, 0.7, 0.5, 0.4} {
		total += len(e.Sync(aggs(v)))
	}
	// one excursion above open: exactly one flip, none on the way back down
	if total != 1 {
		t.Fatalf("expected exactly 1 flip for a single excursion, got %d", total)
	}
}

func TestNewEvaluatorRejectsInvertedBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands[field.Capital] = Thresholds{Open: 0.3, Close: 0.3}
	_, err := NewEvaluator(cfg)
	var cfgErr *field.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Bands[field.Capital] = Thresholds{Open: 1.2, Close: 0.3}
	if _, err := NewEvaluator(cfg); err == nil {
		t.Fatal("expected error for band above 1")
	}
}

func TestLoadStatesAndReset(t *testing.T) {
	e := makeEvaluator(t)

	var states [field.DimensionCount]bool
	states[field.Craft] = true
	e.LoadStates(states)
	if !e.States()[field.Craft] {
		t.Fatal("expected craft gate open after load")
	}

	e.Reset()
	if e.States() != ([field.DimensionCount]bool{}) {
		t.Fatal("expected all gates closed after reset")
	}
}
