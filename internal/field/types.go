package field

import (
	"fmt"
	"math"
)

// #region tier

// Tier identifies a level of a dimension's fractal hierarchy.
type Tier int

const (
	TierCore Tier = iota
	TierDomain
	TierIndicator
)

// String returns the canonical tier name.
func (t Tier) String() string {
	switch t {
	case TierCore:
		return "core"
	case TierDomain:
		return "domain"
	case TierIndicator:
		return "indicator"
	}
	return "unknown"
}

// #endregion tier

// #region node

// Node is an addressable scalar value within a dimension's hierarchy.
// Value is always within [0,1]; Index is the node's ordinal in the fixed
// enumeration order of its dimension.
type Node struct {
	ID        string
	Dimension Dimension
	Tier      Tier
	Index     int
	Value     float64
	LastTick  uint64
}

// #endregion node

// #region topology

// Topology fixes the fractal shape of each dimension's node hierarchy:
// one core node, DomainsPerDimension domain nodes, and IndicatorsPerDomain
// indicator nodes under each domain.
type Topology struct {
	DomainsPerDimension int `yaml:"domains_per_dimension" json:"domains_per_dimension"`
	IndicatorsPerDomain int `yaml:"indicators_per_domain" json:"indicators_per_domain"`
}

// DefaultTopology returns the observed 1:12:144 fractal ratio.
func DefaultTopology() Topology {
	return Topology{DomainsPerDimension: 12, IndicatorsPerDomain: 12}
}

// NodesPerDimension returns the node count of one dimension's hierarchy.
func (t Topology) NodesPerDimension() int {
	return 1 + t.DomainsPerDimension*(1+t.IndicatorsPerDomain)
}

// Validate checks the topology at construction time.
func (t Topology) Validate() error {
	if t.DomainsPerDimension < 1 {
		return &ConfigurationError{Field: "topology.domains_per_dimension", Reason: "must be at least 1"}
	}
	if t.IndicatorsPerDomain < 0 {
		return &ConfigurationError{Field: "topology.indicators_per_domain", Reason: "must be non-negative"}
	}
	return nil
}

// CoreID returns the node id of a dimension's core node.
func CoreID(d Dimension) string {
	return d.String()
}

// DomainID returns the node id of domain dom (1-based) under d.
func DomainID(d Dimension, dom int) string {
	return fmt.Sprintf("%s.%d", d, dom)
}

// IndicatorID returns the node id of indicator ind (1-based) under
// domain dom of d.
func IndicatorID(d Dimension, dom, ind int) string {
	return fmt.Sprintf("%s.%d.%d", d, dom, ind)
}

// #endregion topology

// #region change

// Change records a node value before and after an operation.
type Change struct {
	Old float64 `json:"old"`
	New float64 `json:"new"`
}

// #endregion change

// #region clamp

// Clamp restricts v to [0,1]. Out-of-range inputs are clamped, never
// rejected; NaN maps to 0 because it cannot be ordered against the bounds.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion clamp
