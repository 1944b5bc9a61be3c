package world

import (
	"math"
)

// Deterministic lattice value noise. Lattice values come from an integer hash
// of (coordinate, seed), so any sample is a pure function of its inputs.

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash2(x int64, y int64, seed int64) uint64 {
	// SplitMix64 finaliser over a mixed coordinate key
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// latticeValue maps a lattice point to [-1,1].
func latticeValue(x int64, y int64, seed int64) float64 {
	h := hash2(x, y, seed)
	return float64(h&0xFFFFFFFF)/float64(0xFFFFFFFF)*2 - 1
}

func valueNoise1D(x float64, seed int64) float64 {
	x0 := math.Floor(x)
	fx := fade(x - x0)
	v0 := latticeValue(int64(x0), 0, seed)
	v1 := latticeValue(int64(x0)+1, 0, seed)
	return lerp(v0, v1, fx)
}

func valueNoise2D(x float64, y float64, seed int64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int64(x0), int64(y0)

	fx := fade(x - x0)
	fy := fade(y - y0)

	v00 := latticeValue(ix, iy, seed)
	v10 := latticeValue(ix+1, iy, seed)
	v01 := latticeValue(ix, iy+1, seed)
	v11 := latticeValue(ix+1, iy+1, seed)

	i0 := lerp(v00, v10, fx)
	i1 := lerp(v01, v11, fx)
	return lerp(i0, i1, fy)
}

// Octave parameters shared by both dimensions.
const (
	noiseOctaves     = 3
	noisePersistence = 0.5
	noiseLacunarity  = 2.0
)

// Noise1D returns smooth noise in [-1,1] along a line.
func Noise1D(x float64, seed int64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range noiseOctaves {
		sum += valueNoise1D(x*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= noisePersistence
		frequency *= noiseLacunarity
	}
	return sum / norm
}

// Noise2D returns smooth noise in [-1,1] over the plane.
func Noise2D(x, y float64, seed int64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for i := range noiseOctaves {
		sum += valueNoise2D(x*frequency, y*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= noisePersistence
		frequency *= noiseLacunarity
	}
	return sum / norm
}
