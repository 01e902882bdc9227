package field

import "fmt"

// #region registry

// Registry owns every node value. All writes go through Set, which clamps
// to [0,1] and never fails for a known id. Dimension aggregates are always
// derived from the constituent nodes, never stored.
type Registry struct {
	topo      Topology
	baselines [DimensionCount]float64
	nodes     []Node
	index     map[string]int
	tick      uint64
}

// NewRegistry builds the full fractal node set for every dimension at its
// baseline value. Baselines outside [0,1] are clamped, not rejected.
func NewRegistry(topo Topology, baselines [DimensionCount]float64) (*Registry, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		topo:  topo,
		index: make(map[string]int),
	}
	for i, b := range baselines {
		r.baselines[i] = Clamp(b)
	}

	for _, d := range Dimensions() {
		idx := 0
		r.addNode(CoreID(d), d, TierCore, &idx)
		for dom := 1; dom <= topo.DomainsPerDimension; dom++ {
			r.addNode(DomainID(d, dom), d, TierDomain, &idx)
			for ind := 1; ind <= topo.IndicatorsPerDomain; ind++ {
				r.addNode(IndicatorID(d, dom, ind), d, TierIndicator, &idx)
			}
		}
	}
	return r, nil
}

func (r *Registry) addNode(id string, d Dimension, tier Tier, idx *int) {
	r.index[id] = len(r.nodes)
	r.nodes = append(r.nodes, Node{
		ID:        id,
		Dimension: d,
		Tier:      tier,
		Index:     *idx,
		Value:     r.baselines[d],
	})
	*idx++
}

// #endregion registry

// #region accessors

// Topology returns the registry's fractal shape.
func (r *Registry) Topology() Topology {
	return r.topo
}

// Baseline returns the configured baseline value for a dimension.
func (r *Registry) Baseline(d Dimension) float64 {
	if !d.Valid() {
		return 0
	}
	return r.baselines[d]
}

// Tick returns the current tick counter.
func (r *Registry) Tick() uint64 {
	return r.tick
}

// AdvanceTick increments the tick counter by exactly one.
func (r *Registry) AdvanceTick() uint64 {
	r.tick++
	return r.tick
}

// Has reports whether a node id exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Get returns a node by id.
func (r *Registry) Get(id string) (Node, error) {
	i, ok := r.index[id]
	if !ok {
		return Node{}, &NotFoundError{Kind: "node", Name: id}
	}
	return r.nodes[i], nil
}

// Nodes returns a copy of every node in fixed enumeration order.
func (r *Registry) Nodes() []Node {
	out := make([]Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// NodesIn returns copies of the nodes of one dimension, in enumeration order.
func (r *Registry) NodesIn(d Dimension) []Node {
	var out []Node
	for _, n := range r.nodes {
		if n.Dimension == d {
			out = append(out, n)
		}
	}
	return out
}

// #endregion accessors

// #region mutation

// Set writes a node value, clamping to [0,1], and stamps the node with the
// current tick. Unknown ids are the only failure mode.
func (r *Registry) Set(id string, value float64) (Node, error) {
	i, ok := r.index[id]
	if !ok {
		return Node{}, &NotFoundError{Kind: "node", Name: id}
	}
	r.nodes[i].Value = Clamp(value)
	r.nodes[i].LastTick = r.tick
	return r.nodes[i], nil
}

// ResetBaseline restores every node to its dimension baseline and rewinds
// the tick counter to zero.
func (r *Registry) ResetBaseline() {
	r.tick = 0
	for i := range r.nodes {
		r.nodes[i].Value = r.baselines[r.nodes[i].Dimension]
		r.nodes[i].LastTick = 0
	}
}

// Load replaces all node values and the tick counter atomically: the input
// is validated and clamped before any node is written, so readers never see
// a partially applied snapshot.
func (r *Registry) Load(values []float64, tick uint64) error {
	if len(values) != len(r.nodes) {
		return fmt.Errorf("load: expected %d node values, got %d", len(r.nodes), len(values))
	}
	clamped := make([]float64, len(values))
	for i, v := range values {
		clamped[i] = Clamp(v)
	}
	r.tick = tick
	for i := range r.nodes {
		r.nodes[i].Value = clamped[i]
		r.nodes[i].LastTick = tick
	}
	return nil
}

// #endregion mutation

// #region aggregates

// Aggregate returns the mean of a dimension's node values. It is a pure
// reduction; the aggregate is never stored.
func (r *Registry) Aggregate(d Dimension) float64 {
	var sum float64
	count := 0
	for _, n := range r.nodes {
		if n.Dimension == d {
			sum += n.Value
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Aggregates returns every dimension aggregate in enumeration order.
func (r *Registry) Aggregates() [DimensionCount]float64 {
	var sums [DimensionCount]float64
	var counts [DimensionCount]int
	for _, n := range r.nodes {
		sums[n.Dimension] += n.Value
		counts[n.Dimension]++
	}
	var out [DimensionCount]float64
	for i := range out {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out
}

// Values returns the ordered node value vector.
func (r *Registry) Values() []float64 {
	out := make([]float64, len(r.nodes))
	for i, n := range r.nodes {
		out[i] = n.Value
	}
	return out
}

// #endregion aggregates
