package diffusion

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region graph

// Graph is the validated, immutable adjacency structure used to spread
// value changes. All structural rules are enforced here, at construction,
// so Propagate never has a failure mode.
type Graph struct {
	factor    float64
	neighbors map[string][]Edge
	edgeCount int
}

// NewGraph validates the adjacency configuration and builds the graph.
// Rules: propagation factor in [0,1); no self-loops; weights in (0,1];
// per-source outgoing weights sum to at most 1, which together with the
// factor bound guarantees propagation never amplifies total energy.
// resolve, when non-nil, must report whether a node id exists.
func NewGraph(cfg Config, resolve func(id string) bool) (*Graph, error) {
	if cfg.PropagationFactor < 0 || cfg.PropagationFactor >= 1 {
		return nil, &field.ConfigurationError{
			Field:  "propagation_factor",
			Reason: fmt.Sprintf("must be in [0,1), got %v", cfg.PropagationFactor),
		}
	}

	g := &Graph{
		factor:    cfg.PropagationFactor,
		neighbors: make(map[string][]Edge),
	}
	outSum := make(map[string]float64)

	for i, e := range cfg.Edges {
		if e.Source == e.Target {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("edges[%d]", i),
				Reason: fmt.Sprintf("self-loop on %q", e.Source),
			}
		}
		if e.Weight <= 0 || e.Weight > 1 {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("edges[%d]", i),
				Reason: fmt.Sprintf("weight %v outside (0,1]", e.Weight),
			}
		}
		if resolve != nil {
			if !resolve(e.Source) {
				return nil, &field.ConfigurationError{
					Field:  fmt.Sprintf("edges[%d]", i),
					Reason: fmt.Sprintf("unknown source node %q", e.Source),
				}
			}
			if !resolve(e.Target) {
				return nil, &field.ConfigurationError{
					Field:  fmt.Sprintf("edges[%d]", i),
					Reason: fmt.Sprintf("unknown target node %q", e.Target),
				}
			}
		}
		outSum[e.Source] += e.Weight
		if outSum[e.Source] > 1+1e-9 {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("edges[%d]", i),
				Reason: fmt.Sprintf("outgoing weights of %q sum to %.6f, exceeding 1", e.Source, outSum[e.Source]),
			}
		}
		g.neighbors[e.Source] = append(g.neighbors[e.Source], e)
		g.edgeCount++
	}
	return g, nil
}

// Neighbors returns the outgoing edges of a node, in configuration order.
func (g *Graph) Neighbors(id string) []Edge {
	return g.neighbors[id]
}

// EdgeCount returns the total number of edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Factor returns the propagation factor.
func (g *Graph) Factor() float64 {
	return g.factor
}

// #endregion graph

// #region propagate

// Propagate spreads each changed node's delta to its neighbors in exactly
// one pass: contributions are computed from the input deltas only, then
// applied, so a single call never cascades. Multi-hop spread emerges across
// successive calls. Nodes without neighbors are unaffected.
//
// Iteration is in sorted id order so results are deterministic regardless
// of map layout.
func (g *Graph) Propagate(reg *field.Registry, deltas map[string]float64) map[string]field.Change {
	if g.factor == 0 || len(deltas) == 0 {
		return nil
	}

	sources := make([]string, 0, len(deltas))
	for id := range deltas {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	contrib := make(map[string]float64)
	for _, id := range sources {
		d := deltas[id]
		if d == 0 {
			continue
		}
		for _, e := range g.neighbors[id] {
			contrib[e.Target] += d * e.Weight * g.factor
		}
	}
	if len(contrib) == 0 {
		return nil
	}

	targets := make([]string, 0, len(contrib))
	for id := range contrib {
		targets = append(targets, id)
	}
	sort.Strings(targets)

	changes := make(map[string]field.Change, len(targets))
	for _, id := range targets {
		n, err := reg.Get(id)
		if err != nil {
			continue // construction validated every edge endpoint
		}
		updated, err := reg.Set(id, n.Value+contrib[id])
		if err != nil {
			continue
		}
		changes[id] = field.Change{Old: n.Value, New: updated.Value}
	}
	return changes
}

// #endregion propagate
