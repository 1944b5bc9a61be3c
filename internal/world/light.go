package world

import (
	"terra2d/internal/profiling"
)

// maxRelightSteps bounds the work one edit can queue. Cells the flood does
// not reach are picked up by the per-tick chunk sweep.
const maxRelightSteps = 8192

type cell struct{ x, y int }

var neighbours = [4]cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// computeLight derives the light level of one cell from its neighbours.
func (w *World) computeLight(c *Chunk, x, y int) float64 {
	b := c.Block(x, y)
	if b != nil && b.IsLightSource() {
		return 1
	}
	// Nothing strictly above this cell.
	if y >= c.top(x) {
		return 1
	}

	best := 0.0
	for _, d := range neighbours {
		best = max(best, w.LightAt(x+d.x, y+d.y))
	}

	att := w.reg.AirAttenuation()
	if b != nil {
		att = b.Attenuation()
	}
	return clamp01(best - att)
}

// sweepLight recomputes every cell of c once, top row first.
func (w *World) sweepLight(c *Chunk) {
	if !c.IsGenerated() {
		return
	}
	defer profiling.Track("world.sweepLight")()
	for y := MapHeight - 1; y >= 0; y-- {
		for x := c.OriginX; x < c.OriginX+ChunkWidth; x++ {
			c.setLight(x, y, w.computeLight(c, x, y))
		}
	}
}

// relight floods outward from an edit at x, y. oldTop is the column height
// before the edit; every cell whose sky exposure flipped is seeded too.
func (w *World) relight(c *Chunk, x, y, oldTop int) {
	defer profiling.Track("world.relight")()

	queue := make([]cell, 0, 64)
	queue = append(queue, cell{x, y})
	for _, d := range neighbours {
		queue = append(queue, cell{x + d.x, y + d.y})
	}
	lo, hi := min(oldTop, c.top(x)), max(oldTop, c.top(x))
	for cy := max(lo, 0); cy <= hi; cy++ {
		if cy != y {
			queue = append(queue, cell{x, cy})
		}
	}

	for steps := 0; len(queue) > 0 && steps < maxRelightSteps; steps++ {
		p := queue[0]
		queue = queue[1:]

		if p.y < 0 || p.y >= MapHeight {
			continue
		}
		pc, err := w.store.ChunkAtBlock(p.x)
		if err != nil || !pc.IsGenerated() {
			continue
		}
		v := w.computeLight(pc, p.x, p.y)
		if v == pc.Light(p.x, p.y) {
			continue
		}
		pc.setLight(p.x, p.y, v)
		for _, d := range neighbours {
			queue = append(queue, cell{p.x + d.x, p.y + d.y})
		}
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
