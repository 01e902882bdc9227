package engine

import (
	"fmt"

	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
	"github.com/danielpatrickdp/fieldstate/internal/motion"
)

// #region replay

// Replay rebuilds the full state by re-applying every event in order
// against a scratch core built from the same configuration, then swaps the
// result in atomically. Corruption — a sequence number not strictly above
// the last applied, an unknown dimension/motion/kind, or a snapshot hash
// that does not match the recomputed state — aborts the whole replay with
// ReplayError naming the offending index, leaving the engine untouched.
func (e *Engine) Replay(events []journal.Event) (field.Snapshot, error) {
	e.mu.RLock()
	cfg, graphCfg, logger := e.cfg, e.graphCfg, e.logger
	e.mu.RUnlock()

	scratch, err := New(cfg, graphCfg, logger)
	if err != nil {
		return field.Snapshot{}, fmt.Errorf("replay scratch core: %w", err)
	}

	scratch.mu.Lock()
	var lastSeq uint64
	for i, ev := range events {
		if ev.Seq <= lastSeq {
			scratch.mu.Unlock()
			return field.Snapshot{}, &journal.ReplayError{
				Index:  i,
				Reason: fmt.Sprintf("sequence %d not above last applied %d", ev.Seq, lastSeq),
			}
		}
		lastSeq = ev.Seq

		switch ev.Kind {
		case journal.KindMotion:
			d, err := field.ParseDimension(ev.Dimension)
			if err != nil {
				scratch.mu.Unlock()
				return field.Snapshot{}, &journal.ReplayError{Index: i, Reason: fmt.Sprintf("unknown dimension %q", ev.Dimension)}
			}
			m, err := motion.ParseMotion(ev.Motion)
			if err != nil {
				scratch.mu.Unlock()
				return field.Snapshot{}, &journal.ReplayError{Index: i, Reason: fmt.Sprintf("unknown motion %q", ev.Motion)}
			}
			if _, _, err := scratch.applyCore(d, m, ev.Delta); err != nil {
				scratch.mu.Unlock()
				return field.Snapshot{}, &journal.ReplayError{Index: i, Reason: err.Error()}
			}
		case journal.KindTick:
			scratch.tickCore()
		default:
			scratch.mu.Unlock()
			return field.Snapshot{}, &journal.ReplayError{Index: i, Reason: fmt.Sprintf("unknown event kind %q", ev.Kind)}
		}

		if ev.SnapshotHash != "" {
			if got := scratch.snapshotLocked().Hash(); got != ev.SnapshotHash {
				scratch.mu.Unlock()
				return field.Snapshot{}, &journal.ReplayError{Index: i, Reason: "snapshot hash mismatch"}
			}
		}
	}
	snap := scratch.snapshotLocked()
	scratch.mu.Unlock()

	e.mu.Lock()
	e.reg = scratch.reg
	e.gates = scratch.gates
	e.log.Replace(events)
	e.mu.Unlock()

	return snap, nil
}

// #endregion replay
