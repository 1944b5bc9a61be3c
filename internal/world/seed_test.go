package world

import (
	"math/rand/v2"
	"testing"
)

func inSeedRange(s int64) bool {
	return s >= seedFloor && s < seedLimit
}

func TestNewSeedRange(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		if s := NewSeed(r); !inSeedRange(s) {
			t.Fatalf("NewSeed returned %d", s)
		}
	}
	if s := NewSeed(nil); !inSeedRange(s) {
		t.Errorf("NewSeed(nil) returned %d", s)
	}
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"42", 4200000},
		{"0", 1000000},
		{"1234567", 1234567},
		{"0000001", 1000000},
		{"9999999", 9999999},
	}
	for _, tt := range tests {
		if got := ParseSeed(tt.in); got != tt.want {
			t.Errorf("ParseSeed(%q) = %d, expected %d", tt.in, got, tt.want)
		}
	}
}

func TestParseSeedHashesText(t *testing.T) {
	for _, in := range []string{"hello", "12345678", "-5", "seed with spaces"} {
		a, b := ParseSeed(in), ParseSeed(in)
		if a != b {
			t.Errorf("ParseSeed(%q) not stable: %d vs %d", in, a, b)
		}
		if !inSeedRange(a) {
			t.Errorf("ParseSeed(%q) = %d out of range", in, a)
		}
	}
	if ParseSeed("hello") == ParseSeed("world") {
		t.Errorf("Expected different strings to hash to different seeds")
	}
}

func TestParseSeedEmptyIsRandom(t *testing.T) {
	if s := ParseSeed(""); !inSeedRange(s) {
		t.Errorf("ParseSeed(\"\") = %d out of range", s)
	}
}
