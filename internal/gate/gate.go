package gate

import (
	"fmt"

	"github.com/danielpatrickdp/fieldstate/internal/field"
)

// #region evaluator

// Evaluator holds one hysteresis state machine per dimension. A gate opens
// when the dimension aggregate reaches its open threshold and closes only
// when the aggregate falls below the close threshold; inside the band the
// state is sticky, so a single excursion can never flip a gate twice.
// All gates start CLOSED.
type Evaluator struct {
	config Config
	open   [field.DimensionCount]bool
}

// NewEvaluator validates every hysteresis band at construction.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	for i, b := range cfg.Bands {
		if b.Close >= b.Open {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("gates[%s]", field.Dimension(i)),
				Reason: fmt.Sprintf("close threshold %.4f must be below open threshold %.4f", b.Close, b.Open),
			}
		}
		if b.Open > 1 || b.Close < 0 {
			return nil, &field.ConfigurationError{
				Field:  fmt.Sprintf("gates[%s]", field.Dimension(i)),
				Reason: fmt.Sprintf("band [%.4f, %.4f] outside [0,1]", b.Close, b.Open),
			}
		}
	}
	return &Evaluator{config: cfg}, nil
}

// #endregion evaluator

// #region sync

// Sync applies hysteresis transitions against the current aggregates and
// returns the dimensions whose gate flipped. The engine calls this after
// every mutation, which keeps gate state a pure function of the event log.
func (e *Evaluator) Sync(aggregates [field.DimensionCount]float64) []field.Dimension {
	var flipped []field.Dimension
	for i, score := range aggregates {
		b := e.config.Bands[i]
		switch {
		case !e.open[i] && score >= b.Open:
			e.open[i] = true
			flipped = append(flipped, field.Dimension(i))
		case e.open[i] && score < b.Close:
			e.open[i] = false
			flipped = append(flipped, field.Dimension(i))
		}
	}
	return flipped
}

// EvaluateAll reports every dimension's activation flag alongside the
// aggregate it was scored on. Read-only: transitions already fired during
// the mutation that produced these aggregates.
func (e *Evaluator) EvaluateAll(aggregates [field.DimensionCount]float64) map[field.Dimension]Status {
	out := make(map[field.Dimension]Status, field.DimensionCount)
	for i, score := range aggregates {
		out[field.Dimension(i)] = Status{Open: e.open[i], Score: score}
	}
	return out
}

// #endregion sync

// #region state

// States returns the activation flag of every dimension in enumeration order.
func (e *Evaluator) States() [field.DimensionCount]bool {
	return e.open
}

// LoadStates replaces all gate flags, used when restoring a snapshot.
func (e *Evaluator) LoadStates(states [field.DimensionCount]bool) {
	e.open = states
}

// Reset closes every gate.
func (e *Evaluator) Reset() {
	e.open = [field.DimensionCount]bool{}
}

// #endregion state
