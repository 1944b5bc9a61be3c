package world

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
)

const (
	seedLimit = 10_000_000
	seedFloor = 1_000_000
	maxDigits = 7
)

// normalizeSeed scales s up to seven digits.
func normalizeSeed(s int64) int64 {
	s %= seedLimit
	if s < 0 {
		s = -s
	}
	if s == 0 {
		return seedFloor
	}
	for s < seedFloor {
		s *= 10
	}
	return s
}

// NewSeed draws a random seven digit seed from r. A nil r uses the
// global source.
func NewSeed(r *rand.Rand) int64 {
	var n int64
	if r == nil {
		n = rand.Int64N(seedLimit)
	} else {
		n = r.Int64N(seedLimit)
	}
	return normalizeSeed(n)
}

// ParseSeed turns user input into a seed. Short digit strings are used
// directly; anything else is hashed. An empty string yields a random seed.
func ParseSeed(s string) int64 {
	if s == "" {
		return NewSeed(nil)
	}
	if len(s) <= maxDigits && isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return normalizeSeed(n)
		}
	}
	h := fnv.New64a()
	h.Write([]byte(s))
	return normalizeSeed(int64(h.Sum64() % seedLimit))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
