package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/slices"

	"terra2d/internal/profiling"
	"terra2d/internal/world"
)

// ClampToWorld keeps the body inside the map. It runs on the predicted
// position so a body moving out of bounds is stopped before it leaves.
func ClampToWorld(b *Body, dt float64) {
	next := b.Pos.Add(b.Vel.Mul(dt))

	// Bottom world bound
	if next.Y() < 0 {
		b.Pos[1] = 0
		b.Vel[1] = 0
	}
	// Left world bound
	if next.X() < 0 {
		b.Pos[0] = 0
		b.Vel[0] = 0
	}
	// Right world bound
	right := float64(world.MapWidth) - b.Size.X()/world.BlockSize/2 - 2
	if next.X() > right {
		b.Pos[0] = right
		b.Vel[0] = 0
	}
}

const faceEpsilon = 1e-9

type candidate struct {
	x, y int
	dist float64
}

// ResolveBlocks pushes the body out of every solid block its predicted box
// would overlap. Blocks nearest a player are resolved first; equal
// distances fall back to (x, y) order. Each hit snaps the body flush to the
// approached block face with the smallest penetration and zeroes that
// velocity axis.
func ResolveBlocks(w *world.World, b *Body, dt float64) {
	defer profiling.Track("physics.ResolveBlocks")()

	area := b.Predicted(dt).Expand(1)
	minX, maxX := int(math.Floor(area.Min.X())), int(math.Floor(area.Max.X()))
	minY, maxY := int(math.Floor(area.Min.Y())), int(math.Floor(area.Max.Y()))

	anchors := playerAnchors(w, b)
	var cands []candidate
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			blk := w.Block(x, y)
			if blk == nil || !blk.IsSolid() {
				continue
			}
			cands = append(cands, candidate{x: x, y: y, dist: nearest(anchors, x, y)})
		}
	}
	slices.SortStableFunc(cands, func(a, c candidate) bool {
		if a.dist != c.dist {
			return a.dist < c.dist
		}
		if a.x != c.x {
			return a.x < c.x
		}
		return a.y < c.y
	})

	for _, c := range cands {
		resolve(b, dt, c.x, c.y)
	}
}

func resolve(b *Body, dt float64, x, y int) {
	box := b.Predicted(dt)
	blk := BlockAABB(x, y)
	if !box.Intersects(blk) {
		return
	}

	fromAbove := blk.Max.Y() - box.Min.Y()
	fromBelow := box.Max.Y() - blk.Min.Y()
	fromLeft := box.Max.X() - blk.Min.X()
	fromRight := blk.Max.X() - box.Min.X()

	// A body may only leave through a face it was outside of before moving.
	cur := b.Bounds()
	open := [4]bool{
		cur.Min.Y() >= blk.Max.Y()-faceEpsilon,
		cur.Max.Y() <= blk.Min.Y()+faceEpsilon,
		cur.Max.X() <= blk.Min.X()+faceEpsilon,
		cur.Min.X() >= blk.Max.X()-faceEpsilon,
	}
	if open == [4]bool{} {
		open = [4]bool{true, true, true, true}
	}
	depth := [4]float64{fromAbove, fromBelow, fromLeft, fromRight}
	best := math.Inf(1)
	for i, d := range depth {
		if open[i] {
			best = min(best, d)
		}
	}

	switch best {
	case fromAbove:
		b.Pos[1] = blk.Max.Y()
		b.Vel[1] = 0
	case fromBelow:
		b.Pos[1] = blk.Min.Y() - b.Size.Y()
		b.Vel[1] = 0
	case fromLeft:
		b.Pos[0] = blk.Min.X() - b.Size.X()
		b.Vel[0] = 0
	default:
		b.Pos[0] = blk.Max.X()
		b.Vel[0] = 0
	}
}

// playerAnchors returns the position of every player, or the centre of the
// body itself when the world has none.
func playerAnchors(w *world.World, b *Body) []mgl64.Vec2 {
	players := w.Players()
	if len(players) == 0 {
		return []mgl64.Vec2{b.Bounds().Center()}
	}
	out := make([]mgl64.Vec2, len(players))
	for i, p := range players {
		out[i] = p.Position()
	}
	return out
}

func nearest(anchors []mgl64.Vec2, x, y int) float64 {
	c := mgl64.Vec2{float64(x) + 0.5, float64(y) + 0.5}
	best := math.Inf(1)
	for _, a := range anchors {
		d := c.Sub(a)
		best = min(best, d.Dot(d))
	}
	return best
}

// OnGround reports whether the body rests on a solid block or the map floor.
func OnGround(w *world.World, b *Body) bool {
	y := b.Pos.Y()
	if y == 0 {
		return true
	}
	if y != math.Floor(y) {
		return false
	}
	row := int(y) - 1
	for x := int(math.Floor(b.Pos.X())); float64(x) < b.Pos.X()+b.Size.X(); x++ {
		if blk := w.Block(x, row); blk != nil && blk.IsSolid() {
			return true
		}
	}
	return false
}

// FindGroundLevel returns the y a body standing in column x would rest at:
// one above the highest solid block, or 0 over an empty column.
func FindGroundLevel(w *world.World, x int) float64 {
	for y := world.MapHeight - 1; y >= 0; y-- {
		if blk := w.Block(x, y); blk != nil && blk.IsSolid() {
			return float64(y + 1)
		}
	}
	return 0
}
