package journal

// #region log

// Log is the in-memory append-only event log. Sequence numbers are assigned
// on append, starting at 1, and only ever increase.
type Log struct {
	events []Event
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append stamps the next sequence number onto the event and records it.
func (l *Log) Append(e Event) Event {
	e.Seq = l.LastSeq() + 1
	l.events = append(l.events, e)
	return e
}

// Events returns a copy of the log in append order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.events)
}

// LastSeq returns the sequence number of the newest entry, 0 when empty.
func (l *Log) LastSeq() uint64 {
	if len(l.events) == 0 {
		return 0
	}
	return l.events[len(l.events)-1].Seq
}

// Drain empties the log and returns the removed events, for archival.
func (l *Log) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}

// Replace swaps in a complete event sequence, used after a successful
// replay so the live log matches the replayed history exactly.
func (l *Log) Replace(events []Event) {
	l.events = make([]Event, len(events))
	copy(l.events, events)
}

// #endregion log
