package entropy

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region config

// Config holds the reference ("ideal") aggregate vector and per-dimension
// weights for the divergence metric.
type Config struct {
	Ideal   [field.DimensionCount]float64
	Weights [field.DimensionCount]float64
}

// DefaultConfig targets a fully developed field with uniform weights.
func DefaultConfig() Config {
	var c Config
	for i := range c.Ideal {
		c.Ideal[i] = 1.0
		c.Weights[i] = 1.0
	}
	return c
}

// #endregion config

// #region calculator

// Calculator computes the weighted Euclidean divergence between the current
// dimension aggregates and the ideal vector. It is a pure read-side query:
// deterministic, side-effect free, zero iff the vectors are identical, and
// strictly increasing when any single dimension moves further from ideal.
type Calculator struct {
	config Config
}

// NewCalculator validates the reference vector and weights at construction.
func NewCalculator(cfg Config) (*Calculator, error) {
	for i, w := range cfg.Weights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("entropy.weights[%s]", field.Dimension(i)),
				Reason: fmt.Sprintf("must be positive and finite, got %v", w),
			}
		}
	}
	for i, v := range cfg.Ideal {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("entropy.ideal[%s]", field.Dimension(i)),
				Reason: fmt.Sprintf("must be in [0,1], got %v", v),
			}
		}
	}
	return &Calculator{config: cfg}, nil
}

// Score returns sqrt(Σ w_d · (current_d − ideal_d)²).
func (c *Calculator) Score(aggregates [field.DimensionCount]float64) float64 {
	var sum float64
	for i, v := range aggregates {
		diff := v - c.config.Ideal[i]
		sum += c.config.Weights[i] * diff * diff
	}
	return math.Sqrt(sum)
}

// Ideal returns the reference vector.
func (c *Calculator) Ideal() [field.DimensionCount]float64 {
	return c.config.Ideal
}

// #endregion calculator
