package decay

import (
	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region config

// Config holds the per-dimension multiplicative decay rates. Rates outside
// [0,1] are clamped at use, never rejected.
type Config struct {
	Rates [field.DimensionCount]float64
}

// DefaultConfig returns a uniform 2% decay per tick.
func DefaultConfig() Config {
	var c Config
	for i := range c.Rates {
		c.Rates[i] = 0.02
	}
	return c
}

func clampRate(r float64) float64 {
	if r < 0 || r != r {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// #endregion config

// #region tick

// Tick advances the registry tick counter by exactly one and moves every
// node value one multiplicative step toward its dimension baseline:
//
//	new = baseline + (old - baseline) * (1 - rate)
//
// With baseline 0 and non-negative values this never increases a node.
// Returns per-dimension aggregate deltas for observability and the per-node
// changes for downstream propagation. Decay never fails.
func Tick(reg *field.Registry, cfg Config) (map[field.Dimension]float64, map[string]field.Change) {
	before := reg.Aggregates()
	reg.AdvanceTick()

	changes := make(map[string]field.Change)
	for _, n := range reg.Nodes() {
		rate := clampRate(cfg.Rates[n.Dimension])
		if rate == 0 {
			continue
		}
		baseline := reg.Baseline(n.Dimension)
		updated, err := reg.Set(n.ID, baseline+(n.Value-baseline)*(1-rate))
		if err != nil {
			continue // unreachable: ids come from the registry itself
		}
		if updated.Value != n.Value {
			changes[n.ID] = field.Change{Old: n.Value, New: updated.Value}
		}
	}

	after := reg.Aggregates()
	deltas := make(map[field.Dimension]float64, field.DimensionCount)
	for _, d := range field.Dimensions() {
		deltas[d] = after[d] - before[d]
	}
	return deltas, changes
}

// #endregion tick
