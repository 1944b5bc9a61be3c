package world

import (
	"testing"
)

func TestFluidFallsAndEvaporates(t *testing.T) {
	w := newFlatWorld(t, 9)
	if err := w.SetBlock(3, 20, "water"); err != nil {
		t.Fatalf("SetBlock error: %v", err)
	}
	if src := w.Block(3, 20).Source; src != SourceOrigin {
		t.Fatalf("Expected placed water to be an origin, got %v", src)
	}

	// One cell per SpreadTime ticks, from y=19 down to y=10.
	for range 11 * SpreadTime {
		w.Update()
	}
	for y := 10; y < 20; y++ {
		b := w.Block(3, y)
		if b == nil || b.Type() != "water" {
			t.Fatalf("Expected water at y=%d", y)
		}
		if b.Source != SourceUp {
			t.Errorf("Expected spread water at y=%d to come from above, got %v", y, b.Source)
		}
	}
	if b := w.Block(3, 9); b == nil || b.Type() != "stone" {
		t.Fatalf("Fluid replaced the floor")
	}
	for _, x := range []int{2, 4} {
		if b := w.Block(x, 15); b != nil {
			t.Errorf("Fluid spread sideways to (%d,15)", x)
		}
	}

	if err := w.RemoveBlock(3, 20); err != nil {
		t.Fatalf("RemoveBlock error: %v", err)
	}
	for range 11 * SpreadTime {
		w.Update()
	}
	for y := 10; y <= 20; y++ {
		if b := w.Block(3, y); b != nil {
			t.Errorf("Expected waterfall to drain at y=%d, still %s", y, b.Type())
		}
	}
}

func TestFluidWaitsForSpreadTick(t *testing.T) {
	w := newFlatWorld(t, 9)
	w.Update() // tick 0
	if err := w.SetBlock(3, 20, "water"); err != nil {
		t.Fatalf("SetBlock error: %v", err)
	}
	for range SpreadTime - 1 {
		w.Update()
	}
	if b := w.Block(3, 19); b != nil {
		t.Fatalf("Fluid spread before tick %d", SpreadTime)
	}
	w.Update()
	if b := w.Block(3, 19); b == nil {
		t.Errorf("Expected fluid to spread on tick %d", SpreadTime)
	}
}

func TestSeaWaterIsStable(t *testing.T) {
	w := New(testRegistry(t), 1000000, WithLogger(quietLogger()))
	w.Update()
	c, _ := w.Store().ChunkAt(2)
	before := hashChunkBlocks(c)
	for range 4 * SpreadTime {
		w.Update()
	}
	if hashChunkBlocks(c) != before {
		t.Errorf("Untouched generated terrain changed under fluid updates")
	}
}
