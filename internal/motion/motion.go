package motion

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region apply

// Apply perturbs the motion's target nodes within one dimension by the
// signed delta, clamping each result to [0,1]. It is the pure write step of
// a motion: propagation and event logging are the caller's responsibility.
//
// Unknown dimensions or motions abort with NotFoundError before any node is
// touched. Deltas outside the sane range are applied anyway and reported in
// the returned warning; a non-finite delta is neutralized to 0 so clamping
// stays well defined.
func Apply(reg *field.Registry, d field.Dimension, m Motion, delta, maxSaneDelta float64) (map[string]field.Change, string, error) {
	if !d.Valid() {
		return nil, "", &field.NotFoundError{Kind: "dimension", Name: fmt.Sprintf("%d", int(d))}
	}
	if !m.Valid() {
		return nil, "", &field.NotFoundError{Kind: "motion", Name: fmt.Sprintf("%d", int(m))}
	}

	var warning string
	switch {
	case math.IsNaN(delta):
		warning = "delta is NaN, treated as 0"
		delta = 0
	case math.IsInf(delta, 0):
		warning = fmt.Sprintf("delta %v is infinite, clamping will saturate targets", delta)
	case maxSaneDelta > 0 && math.Abs(delta) > maxSaneDelta:
		warning = fmt.Sprintf("delta %.4f exceeds sane range %.4f, applied anyway", delta, maxSaneDelta)
	}

	effects := make(map[string]field.Change)
	for _, n := range Targets(reg, d, m.TargetSelector()) {
		updated, err := reg.Set(n.ID, n.Value+m.Sign()*delta)
		if err != nil {
			return nil, warning, err
		}
		effects[n.ID] = field.Change{Old: n.Value, New: updated.Value}
	}
	return effects, warning, nil
}

// #endregion apply

// #region targets

// Targets resolves a selector against one dimension's hierarchy, in the
// registry's fixed enumeration order.
func Targets(reg *field.Registry, d field.Dimension, sel Selector) []field.Node {
	nodes := reg.NodesIn(d)
	if sel == SelectAll {
		return nodes
	}

	var tier field.Tier
	switch sel {
	case SelectCore:
		tier = field.TierCore
	case SelectDomains:
		tier = field.TierDomain
	case SelectIndicators:
		tier = field.TierIndicator
	}

	var out []field.Node
	for _, n := range nodes {
		if n.Tier == tier {
			out = append(out, n)
		}
	}
	return out
}

// #endregion targets
