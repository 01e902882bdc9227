package journal

import "fmt"

// #region event

// Kind distinguishes the two entry types of the log.
type Kind string

const (
	KindMotion Kind = "motion"
	KindTick   Kind = "tick"
)

// Event is one entry of the append-only log. Dimension and Motion carry the
// canonical enum names (empty for tick markers); SnapshotHash is the hash of
// the full state after the event was applied, letting replay verify each
// step.
type Event struct {
	Seq          uint64  `json:"seq"`
	Tick         uint64  `json:"tick"`
	Kind         Kind    `json:"kind"`
	Dimension    string  `json:"dimension,omitempty"`
	Motion       string  `json:"motion,omitempty"`
	Delta        float64 `json:"delta,omitempty"`
	SnapshotHash string  `json:"snapshot_hash"`
}

// #endregion event

// #region replay-error

// ReplayError reports a corrupted or out-of-order event found during
// replay. Index is the zero-based position in the log being replayed; the
// whole replay is aborted and no partial state is exposed.
type ReplayError struct {
	Index  int
	Reason string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay failed at event %d: %s", e.Index, e.Reason)
}

// #endregion replay-error
