package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region main

func main() {
	out := flag.String("out", "graph.yaml", "output path for the adjacency YAML")
	domains := flag.Int("domains", 12, "domain nodes per dimension")
	indicators := flag.Int("indicators", 12, "indicator nodes per domain")
	budget := flag.Float64("budget", 0.5, "outgoing weight budget per node (0,1]")
	factor := flag.Float64("factor", 0.25, "propagation damping factor [0,1)")
	flag.Parse()

	topo := field.Topology{DomainsPerDimension: *domains, IndicatorsPerDomain: *indicators}
	if err := topo.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap-graph: %v\n", err)
		os.Exit(2)
	}

	cfg := diffusion.BuildFractal(topo, *budget, *factor)
	if err := diffusion.SaveConfig(*out, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap-graph: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("wrote %s: %d edges, factor %.2f, %d nodes per dimension\n",
		*out, len(cfg.Edges), cfg.PropagationFactor, topo.NodesPerDimension())
}

// #endregion main
