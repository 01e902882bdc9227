package field

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// #region snapshot

// Snapshot is the sole persisted artifact: the tick counter, the ordered
// node value vector, and one gate bit per dimension.
type Snapshot struct {
	Tick   uint64
	Values []float64
	Gates  [DimensionCount]bool
}

// Equal reports whether two snapshots are bit-identical.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Tick != other.Tick || len(s.Values) != len(other.Values) || s.Gates != other.Gates {
		return false
	}
	for i, v := range s.Values {
		if math.Float64bits(v) != math.Float64bits(other.Values[i]) {
			return false
		}
	}
	return true
}

// #endregion snapshot

// #region encoding

const snapshotVersion = 1

// Encode serializes a snapshot: version byte, tick, value count, ordered
// little-endian float64 values, then one gate bitmask byte.
func (s Snapshot) Encode() []byte {
	buf := make([]byte, 1+8+4+len(s.Values)*8+1)
	buf[0] = snapshotVersion
	binary.LittleEndian.PutUint64(buf[1:], s.Tick)
	binary.LittleEndian.PutUint32(buf[9:], uint32(len(s.Values)))
	for i, v := range s.Values {
		binary.LittleEndian.PutUint64(buf[13+i*8:], math.Float64bits(v))
	}
	var bits byte
	for i, open := range s.Gates {
		if open {
			bits |= 1 << i
		}
	}
	buf[len(buf)-1] = bits
	return buf
}

// DecodeSnapshot parses a snapshot produced by Encode.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	if len(b) < 14 {
		return Snapshot{}, fmt.Errorf("decode snapshot: truncated header (%d bytes)", len(b))
	}
	if b[0] != snapshotVersion {
		return Snapshot{}, fmt.Errorf("decode snapshot: unsupported version %d", b[0])
	}
	count := int(binary.LittleEndian.Uint32(b[9:]))
	want := 1 + 8 + 4 + count*8 + 1
	if len(b) != want {
		return Snapshot{}, fmt.Errorf("decode snapshot: expected %d bytes for %d values, got %d", want, count, len(b))
	}

	s := Snapshot{
		Tick:   binary.LittleEndian.Uint64(b[1:]),
		Values: make([]float64, count),
	}
	for i := range s.Values {
		s.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[13+i*8:]))
	}
	bits := b[len(b)-1]
	for i := range s.Gates {
		s.Gates[i] = bits&(1<<i) != 0
	}
	return s, nil
}

// Hash returns the hex SHA-256 of the encoded snapshot. Event log entries
// record it so replay can verify each step.
func (s Snapshot) Hash() string {
	sum := sha256.Sum256(s.Encode())
	return hex.EncodeToString(sum[:])
}

// #endregion encoding
