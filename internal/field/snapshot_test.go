package field

import (
	"testing"
)

func TestSnapshotEncodeDecodeRoundtrip(t *testing.T) {
	s := Snapshot{
		Tick:   42,
		Values: []float64{0, 0.25, 1.0, 0.333333},
		Gates:  [DimensionCount]bool{Capital: true, Resolve: true},
	}

	decoded, err := DecodeSnapshot(s.Encode())
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if !decoded.Equal(s) {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", decoded, s)
	}
}

func TestDecodeSnapshotRejectsCorruptInput(t *testing.T) {
	s := Snapshot{Tick: 1, Values: []float64{0.5}}
	enc := s.Encode()

	if _, err := DecodeSnapshot(enc[:5]); err == nil {
		t.Fatal("expected error for truncated input")
	}
	if _, err := DecodeSnapshot(enc[:len(enc)-3]); err == nil {
		t.Fatal("expected error for length mismatch")
	}

	bad := append([]byte(nil), enc...)
	bad[0] = 99
	if _, err := DecodeSnapshot(bad); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestSnapshotHashReflectsState(t *testing.T) {
	a := Snapshot{Tick: 1, Values: []float64{0.5, 0.5}}
	b := Snapshot{Tick: 1, Values: []float64{0.5, 0.5}}
	if a.Hash() != b.Hash() {
		t.Fatal("identical snapshots must hash identically")
	}

	b.Values[1] = 0.5000001
	if a.Hash() == b.Hash() {
		t.Fatal("value change must change the hash")
	}

	c := Snapshot{Tick: 1, Values: []float64{0.5, 0.5}, Gates: [DimensionCount]bool{Energy: true}}
	if a.Hash() == c.Hash() {
		t.Fatal("gate change must change the hash")
	}
}

func TestSnapshotEqualIsBitExact(t *testing.T) {
	a := Snapshot{Tick: 1, Values: []float64{0.1}}
	b := Snapshot{Tick: 1, Values: []float64{0.1 + 1e-17}}
	if !a.Equal(b) {
		// 0.1+1e-17 rounds to the same float64; sanity check the comparator
		t.Fatal("expected equal snapshots")
	}
	b.Values[0] = 0.1 + 1e-16
	if a.Equal(b) {
		t.Fatal("expected unequal snapshots")
	}
	b = Snapshot{Tick: 2, Values: []float64{0.1}}
	if a.Equal(b) {
		t.Fatal("tick mismatch must compare unequal")
	}
}
