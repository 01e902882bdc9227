package gate

import "github.com/danielpatrickdp/fieldstate/internal/field"

// #region thresholds

// Thresholds is one dimension's hysteresis band. Close must be strictly
// below Open so a value wandering inside the band never flips the gate.
type Thresholds struct {
	Open  float64 `yaml:"open" json:"open"`
	Close float64 `yaml:"close" json:"close"`
}

// Config holds the hysteresis band of every dimension.
type Config struct {
	Bands [field.DimensionCount]Thresholds
}

// DefaultConfig opens gates at two thirds and closes them at one third.
func DefaultConfig() Config {
	var c Config
	for i := range c.Bands {
		c.Bands[i] = Thresholds{Open: 0.66, Close: 0.33}
	}
	return c
}

// #endregion thresholds

// #region status

// Status is the evaluation output for one dimension: the activation flag
// and the aggregate score it was derived from.
type Status struct {
	Open  bool    `json:"open"`
	Score float64 `json:"score"`
}

// #endregion status
