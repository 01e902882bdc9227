package diffusion

import (
	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region fractal

// BuildFractal generates the canonical adjacency configuration for a fractal
// topology: every node is linked in both directions along the parent-child
// hierarchy (core ↔ domains, domain ↔ its indicators). Each node's outgoing
// weight budget is split evenly across its edges, so the per-source sum rule
// holds by construction.
func BuildFractal(topo field.Topology, budget, factor float64) Config {
	if budget <= 0 || budget > 1 {
		budget = 0.5
	}

	cfg := Config{PropagationFactor: factor}
	for _, d := range field.Dimensions() {
		core := field.CoreID(d)
		coreShare := budget / float64(topo.DomainsPerDimension)

		for dom := 1; dom <= topo.DomainsPerDimension; dom++ {
			domainID := field.DomainID(d, dom)
			// A domain splits its budget across its parent and its children.
			domainShare := budget / float64(1+topo.IndicatorsPerDomain)

			cfg.Edges = append(cfg.Edges,
				Edge{Source: core, Target: domainID, Weight: coreShare},
				Edge{Source: domainID, Target: core, Weight: domainShare},
			)
			for ind := 1; ind <= topo.IndicatorsPerDomain; ind++ {
				indicatorID := field.IndicatorID(d, dom, ind)
				cfg.Edges = append(cfg.Edges,
					Edge{Source: domainID, Target: indicatorID, Weight: domainShare},
					Edge{Source: indicatorID, Target: domainID, Weight: budget},
				)
			}
		}
	}
	return cfg
}

// #endregion fractal
