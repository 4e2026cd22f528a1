package engine

import (
	"errors"
	"testing"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](RecordLength)
	for i := 1; i <= RecordLength+1; i++ {
		r.Push(i)
	}
	if r.Len() != RecordLength {
		t.Fatalf("Len = %d, want %d", r.Len(), RecordLength)
	}
	if r.At(0) != 2 {
		t.Errorf("At(0) = %d, want 2", r.At(0))
	}
	if r.At(RecordLength-1) != RecordLength+1 {
		t.Errorf("newest = %d, want %d", r.At(RecordLength-1), RecordLength+1)
	}
	vals := r.Values()
	for i := 1; i < len(vals); i++ {
		if vals[i] != vals[i-1]+1 {
			t.Fatalf("values out of order at %d: %v", i, vals[i-1:i+1])
		}
	}
}

func TestRingPartial(t *testing.T) {
	r := NewRing[string](3)
	r.Push("a")
	r.Push("b")
	if got := r.Values(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Values = %v", got)
	}
	if r.Cap() != 3 {
		t.Errorf("Cap = %d, want 3", r.Cap())
	}
}

func TestBoundaryRecord(t *testing.T) {
	b := NewBoundary(0, 4)
	for i := uint32(1); i <= 2; i++ {
		if err := b.record(i, TickSample{Seconds: 0.5, Entities: int(i), People: 1, Places: 2}); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.StepsComplete != 2 || snap.Progress() != 0.5 {
		t.Errorf("steps = %d progress = %v", snap.StepsComplete, snap.Progress())
	}
	if len(snap.Entities) != 2 || snap.Entities[1] != 2 {
		t.Errorf("entities = %v", snap.Entities)
	}
	if snap.RunID != b.RunID() {
		t.Error("snapshot run id differs from boundary")
	}

	// Snapshots are copies.
	b.record(3, TickSample{})
	if len(snap.Entities) != 2 {
		t.Error("snapshot changed after a later record")
	}
}

func TestBoundaryPoisoning(t *testing.T) {
	b := NewBoundary(0, 10)
	func() {
		defer func() { recover() }()
		b.write(func() { panic("writer failed") })
	}()

	if !b.Poisoned() {
		t.Fatal("boundary not poisoned after panic under write lock")
	}
	if _, err := b.Snapshot(); !errors.Is(err, ErrBoundaryPoisoned) {
		t.Errorf("Snapshot = %v, want ErrBoundaryPoisoned", err)
	}
	if _, err := b.Progress(); !errors.Is(err, ErrBoundaryPoisoned) {
		t.Errorf("Progress = %v, want ErrBoundaryPoisoned", err)
	}
	if err := b.record(1, TickSample{}); !errors.Is(err, ErrBoundaryPoisoned) {
		t.Errorf("record = %v, want ErrBoundaryPoisoned", err)
	}
}
