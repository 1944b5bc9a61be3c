package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis aligned box in block units.
type AABB struct {
	Min, Max mgl64.Vec2
}

// NewAABB returns the box with its lower-left corner at pos.
func NewAABB(pos, size mgl64.Vec2) AABB {
	return AABB{Min: pos, Max: pos.Add(size)}
}

// BlockAABB is the unit box occupied by block (x, y).
func BlockAABB(x, y int) AABB {
	p := mgl64.Vec2{float64(x), float64(y)}
	return AABB{Min: p, Max: p.Add(mgl64.Vec2{1, 1})}
}

// Intersects reports strict overlap. Boxes that only touch do not intersect.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y()
}

// Expand grows the box by d on every side.
func (a AABB) Expand(d float64) AABB {
	v := mgl64.Vec2{d, d}
	return AABB{Min: a.Min.Sub(v), Max: a.Max.Add(v)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec2 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Body is the kinematic state collision works on. Pos is the lower-left
// corner; Size is width and height in blocks.
type Body struct {
	Pos  mgl64.Vec2
	Vel  mgl64.Vec2
	Size mgl64.Vec2
}

// Bounds returns the box at the current position.
func (b *Body) Bounds() AABB {
	return NewAABB(b.Pos, b.Size)
}

// Predicted returns the box after moving by Vel*dt.
func (b *Body) Predicted(dt float64) AABB {
	return NewAABB(b.Pos.Add(b.Vel.Mul(dt)), b.Size)
}
