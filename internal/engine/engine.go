package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/fieldstate/internal/decay"
	"github.com/danielpatrickdp/fieldstate/internal/diffusion"
	"github.com/danielpatrickdp/fieldstate/internal/entropy"
	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/gate"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
	"github.com/danielpatrickdp/fieldstate/internal/motion"
)

// #region engine

// Engine is the explicitly constructed owner of the registry, gates,
// adjacency graph, and event log. It is logically single-writer: every
// mutation is serialized behind one write lock, so gate state, aggregates,
// and the journal are consistent after each individual operation. The engine performs no network or disk
// I/O; persistence is a collaborator's concern.
type Engine struct {
	mu sync.RWMutex

	cfg      Config
	graphCfg diffusion.Config

	reg     *field.Registry
	graph   *diffusion.Graph
	gates   *gate.Evaluator
	entropy *entropy.Calculator
	log     *journal.Log

	decayCfg decay.Config
	maxSane  float64
	logger   *zap.Logger
}

// New builds an engine from its configuration and adjacency graph. Every
// structural rule (hysteresis bands, edge weights, self-loops, entropy
// weights) is validated here; normal operation can no longer fail on
// configuration.
func New(cfg Config, graphCfg diffusion.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	reg, err := field.NewRegistry(r.topo, r.baselines)
	if err != nil {
		return nil, err
	}
	graph, err := diffusion.NewGraph(graphCfg, reg.Has)
	if err != nil {
		return nil, err
	}
	gates, err := gate.NewEvaluator(r.gates)
	if err != nil {
		return nil, err
	}
	ent, err := entropy.NewCalculator(r.entropy)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		graphCfg: graphCfg,
		reg:      reg,
		graph:    graph,
		gates:    gates,
		entropy:  ent,
		log:      journal.NewLog(),
		decayCfg: r.decay,
		maxSane:  r.maxSane,
		logger:   logger,
	}, nil
}

// #endregion engine

// #region apply-motion

// MotionResult reports every node a motion touched, directly or through
// propagation, plus the journal event recorded for it.
type MotionResult struct {
	Event   journal.Event
	Effects map[string]field.Change
	Warning string
}

// ApplyMotion validates and applies one motion to a dimension, propagates
// the change across the adjacency graph, syncs the gates, and appends
// exactly one event. Unknown dimensions or motions abort with NotFoundError
// before any state is mutated.
func (e *Engine) ApplyMotion(d field.Dimension, m motion.Motion, delta float64) (MotionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	effects, warning, err := e.applyCore(d, m, delta)
	if err != nil {
		return MotionResult{}, err
	}

	event := e.log.Append(journal.Event{
		Tick:         e.reg.Tick(),
		Kind:         journal.KindMotion,
		Dimension:    d.String(),
		Motion:       m.String(),
		Delta:        delta,
		SnapshotHash: e.snapshotLocked().Hash(),
	})

	e.logger.Debug("motion applied",
		zap.Uint64("seq", event.Seq),
		zap.String("dimension", d.String()),
		zap.String("motion", m.String()),
		zap.Float64("delta", delta),
		zap.Int("nodes_touched", len(effects)),
	)
	return MotionResult{Event: event, Effects: effects, Warning: warning}, nil
}

// applyCore is the mutation step shared by ApplyMotion and Replay.
// Callers must hold the write lock.
func (e *Engine) applyCore(d field.Dimension, m motion.Motion, delta float64) (map[string]field.Change, string, error) {
	direct, warning, err := motion.Apply(e.reg, d, m, delta, e.maxSane)
	if err != nil {
		return nil, "", err
	}
	if warning != "" {
		e.logger.Warn("motion delta outside sane range",
			zap.String("dimension", d.String()),
			zap.String("motion", m.String()),
			zap.Float64("delta", delta),
			zap.String("detail", warning),
		)
	}

	deltas := make(map[string]float64, len(direct))
	for id, ch := range direct {
		if ch.New != ch.Old {
			deltas[id] = ch.New - ch.Old
		}
	}
	spread := e.graph.Propagate(e.reg, deltas)
	e.gates.Sync(e.reg.Aggregates())
	return mergeEffects(direct, spread), warning, nil
}

func mergeEffects(direct, spread map[string]field.Change) map[string]field.Change {
	out := make(map[string]field.Change, len(direct)+len(spread))
	for id, ch := range direct {
		out[id] = ch
	}
	for id, ch := range spread {
		if prev, ok := out[id]; ok {
			out[id] = field.Change{Old: prev.Old, New: ch.New}
		} else {
			out[id] = ch
		}
	}
	return out
}

// #endregion apply-motion

// #region tick

// Tick decays every node one step toward its baseline, propagates the decay
// deltas, syncs the gates, and appends a tick marker. It advances the tick
// counter by exactly one and never fails. The appended event is returned so
// callers can persist exactly the entry this call produced; re-reading the
// journal for it would race with concurrent mutations.
func (e *Engine) Tick() (map[field.Dimension]float64, journal.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deltas := e.tickCore()
	event := e.log.Append(journal.Event{
		Tick:         e.reg.Tick(),
		Kind:         journal.KindTick,
		SnapshotHash: e.snapshotLocked().Hash(),
	})
	e.logger.Debug("tick applied", zap.Uint64("seq", event.Seq), zap.Uint64("tick", e.reg.Tick()))
	return deltas, event
}

// tickCore is the decay step shared by Tick and Replay. Callers must hold
// the write lock.
func (e *Engine) tickCore() map[field.Dimension]float64 {
	aggDeltas, changes := decay.Tick(e.reg, e.decayCfg)
	nodeDeltas := make(map[string]float64, len(changes))
	for id, ch := range changes {
		nodeDeltas[id] = ch.New - ch.Old
	}
	e.graph.Propagate(e.reg, nodeDeltas)
	e.gates.Sync(e.reg.Aggregates())
	return aggDeltas
}

// #endregion tick

// #region reads

// GetState returns every dimension's derived aggregate.
func (e *Engine) GetState() map[field.Dimension]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	aggs := e.reg.Aggregates()
	out := make(map[field.Dimension]float64, field.DimensionCount)
	for _, d := range field.Dimensions() {
		out[d] = aggs[d]
	}
	return out
}

// EvaluateGates reports every dimension's activation flag and score.
func (e *Engine) EvaluateGates() map[field.Dimension]gate.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gates.EvaluateAll(e.reg.Aggregates())
}

// Entropy returns the divergence between the current aggregates and the
// configured ideal vector.
func (e *Engine) Entropy() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.entropy.Score(e.reg.Aggregates())
}

// GetNode returns one node by id.
func (e *Engine) GetNode(id string) (field.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg.Get(id)
}

// ListNodes returns every node in fixed enumeration order.
func (e *Engine) ListNodes() []field.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg.Nodes()
}

// CurrentTick returns the tick counter.
func (e *Engine) CurrentTick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg.Tick()
}

// Journal returns a copy of the event log.
func (e *Engine) Journal() []journal.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Events()
}

// Snapshot captures the full state: tick, ordered node values, gate bits.
func (e *Engine) Snapshot() field.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() field.Snapshot {
	return field.Snapshot{
		Tick:   e.reg.Tick(),
		Values: e.reg.Values(),
		Gates:  e.gates.States(),
	}
}

// #endregion reads

// #region lifecycle

// Load replaces the full state from a snapshot. The registry validates the
// value vector before any node is written, so readers never observe a
// partial load.
func (e *Engine) Load(snap field.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.reg.Load(snap.Values, snap.Tick); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	e.gates.LoadStates(snap.Gates)
	return nil
}

// Reset restores the baseline state, closes every gate, rewinds the tick
// counter, and drains the event log. The drained events are returned so the
// caller can archive them.
func (e *Engine) Reset() []journal.Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reg.ResetBaseline()
	e.gates.Reset()
	drained := e.log.Drain()
	e.logger.Info("engine reset", zap.Int("archived_events", len(drained)))
	return drained
}

// #endregion lifecycle
