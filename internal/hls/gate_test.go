package hls

import "testing"

func TestGateAdmission(t *testing.T) {
	g := NewGate(2)

	if !g.TryAdmit() {
		t.Fatal("empty gate refused admission")
	}
	g.Acquire()
	if !g.TryAdmit() {
		t.Fatal("gate with a free slot refused admission")
	}
	g.Acquire()

	if g.TryAdmit() {
		t.Error("full gate admitted a job")
	}

	g.Release()
	if !g.TryAdmit() {
		t.Error("gate did not free a slot on release")
	}
}

func TestGateSnapshot(t *testing.T) {
	g := NewGate(3)
	g.Acquire()
	g.Acquire()

	snap := g.Snapshot()
	if snap.Active != 2 {
		t.Errorf("Active = %d, want 2", snap.Active)
	}
	if snap.Max != 3 {
		t.Errorf("Max = %d, want 3", snap.Max)
	}
	if snap.Available != 1 {
		t.Errorf("Available = %d, want 1", snap.Available)
	}
}

// An extra release must not drive the counter negative.
func TestGateReleaseUnderflow(t *testing.T) {
	g := NewGate(1)
	g.Release()

	snap := g.Snapshot()
	if snap.Active != 0 {
		t.Errorf("Active = %d after spurious release, want 0", snap.Active)
	}
	if snap.Available != 1 {
		t.Errorf("Available = %d, want 1", snap.Available)
	}
}

func TestGateZeroCapacity(t *testing.T) {
	g := NewGate(0)
	if g.TryAdmit() {
		t.Error("zero-capacity gate admitted a job")
	}
}
