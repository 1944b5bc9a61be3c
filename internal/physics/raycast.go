package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"terra2d/internal/profiling"
	"terra2d/internal/world"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [2]int
	AdjacentPosition [2]int
	Distance         float64
	Hit              bool
}

// Raycast marches from start along direction and stops at the first
// occupied cell. Fluids count as hits so they can be scooped out.
func Raycast(w *world.World, start, direction mgl64.Vec2, minDist, maxDist float64) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	result := RaycastResult{}
	if direction.Len() == 0 {
		return result
	}
	direction = direction.Normalize()

	const stepSize = 0.02
	steps := int(maxDist / stepSize)
	last := cellOf(start)

	for i := 0; i <= steps; i++ {
		dist := float64(i) * stepSize
		if dist < minDist {
			continue
		}
		cell := cellOf(start.Add(direction.Mul(dist)))
		if w.Block(cell[0], cell[1]) != nil {
			result.HitPosition = cell
			result.AdjacentPosition = last
			result.Distance = dist
			result.Hit = true
			return result
		}
		last = cell
	}
	return result
}

func cellOf(p mgl64.Vec2) [2]int {
	return [2]int{int(math.Floor(p.X())), int(math.Floor(p.Y()))}
}
