package world

import (
	"math"
	"math/rand"
	"testing"
)

// TestHash2Deterministic verifies hash2 produces identical results for same inputs
func TestHash2Deterministic(t *testing.T) {
	first := hash2(10, 20, 42)
	for i := 1; i < 100; i++ {
		if h := hash2(10, 20, 42); h != first {
			t.Errorf("hash2 not deterministic: first=%d, run %d=%d", first, i, h)
		}
	}
}

// TestHash2DifferentInputs verifies hash2 produces different values for different inputs
func TestHash2DifferentInputs(t *testing.T) {
	seed := int64(42)
	if hash2(1, 0, seed) == hash2(2, 0, seed) {
		t.Errorf("hash2 should differ for different X")
	}
	if hash2(0, 1, seed) == hash2(0, 2, seed) {
		t.Errorf("hash2 should differ for different Y")
	}
	if hash2(1, 1, 100) == hash2(1, 1, 200) {
		t.Errorf("hash2 should differ for different seed")
	}
	if hash2(1, 2, seed) == hash2(2, 1, seed) {
		t.Errorf("hash2 should not be symmetric in X and Y")
	}
}

// TestNoiseRange samples both fields and checks they stay in [-1,1]
func TestNoiseRange(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20000; i++ {
		x := r.Float64()*2000 - 1000
		y := r.Float64()*2000 - 1000
		seed := r.Int63n(10_000_000)
		if v := Noise1D(x, seed); v < -1 || v > 1 || math.IsNaN(v) {
			t.Fatalf("Noise1D(%v,%d)=%v out of range", x, seed, v)
		}
		if v := Noise2D(x, y, seed); v < -1 || v > 1 || math.IsNaN(v) {
			t.Fatalf("Noise2D(%v,%v,%d)=%v out of range", x, y, seed, v)
		}
	}
}

// TestNoiseContinuity checks there is no jump across integer lattice lines
func TestNoiseContinuity(t *testing.T) {
	const eps = 1e-7
	seed := int64(1000000)
	for i := -50; i <= 50; i++ {
		x := float64(i)
		if d := math.Abs(Noise1D(x-eps, seed) - Noise1D(x+eps, seed)); d > 1e-4 {
			t.Errorf("Noise1D discontinuous at %v: delta %v", x, d)
		}
		if d := math.Abs(Noise2D(x-eps, 0.5, seed) - Noise2D(x+eps, 0.5, seed)); d > 1e-4 {
			t.Errorf("Noise2D discontinuous in X at %v: delta %v", x, d)
		}
		if d := math.Abs(Noise2D(0.5, x-eps, seed) - Noise2D(0.5, x+eps, seed)); d > 1e-4 {
			t.Errorf("Noise2D discontinuous in Y at %v: delta %v", x, d)
		}
	}
}

func TestNoiseDependsOnSeed(t *testing.T) {
	diff := 0
	for i := range 64 {
		x := float64(i) * 0.37
		if Noise1D(x, 1000000) != Noise1D(x, 1000001) {
			diff++
		}
	}
	if diff == 0 {
		t.Errorf("Noise1D ignores the seed")
	}
}

func BenchmarkNoise2D(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Noise2D(float64(i)*0.25, float64(i%256)*0.25, 1000000)
	}
}
