package diffusion

// #region types

// Edge is a directed weighted link between two nodes of the adjacency
// graph. Weight must be in (0,1]; self-loops are rejected at construction.
type Edge struct {
	Source string  `yaml:"source" json:"source"`
	Target string  `yaml:"target" json:"target"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Config is the external adjacency configuration: the diffusion topology is
// supplied data, not a hard-coded algorithm.
type Config struct {
	PropagationFactor float64 `yaml:"propagation_factor" json:"propagation_factor"`
	Edges             []Edge  `yaml:"edges" json:"edges"`
}

// #endregion types
