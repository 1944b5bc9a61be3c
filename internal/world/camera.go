package world

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Default viewport in pixels.
const (
	DefaultViewportWidth  = 400
	DefaultViewportHeight = 225
)

// Camera maps block coordinates to screen pixels. Block y grows upward,
// screen y grows downward.
type Camera struct {
	Width, Height    int
	OffsetX, OffsetY int
}

func NewCamera(width, height int) Camera {
	return Camera{Width: width, Height: height}
}

// Follow centres the camera horizontally on p and keeps p in the lower
// part of the screen. OffsetY never goes negative.
func (c *Camera) Follow(p mgl64.Vec2) {
	c.OffsetX = -int(p.X()*BlockSize - float64(c.Width/2))
	c.OffsetY = max(int(p.Y()*BlockSize-float64(c.Height/6)), 0)
}

// ChunkWindow returns the half-open range of chunk indices on screen,
// clipped to the map.
func (c Camera) ChunkWindow() (lo, hi int) {
	span := BlockSize * ChunkWidth
	lo = floorDiv(-c.OffsetX, span)
	hi = floorDiv(-c.OffsetX+c.Width, span) + 1
	return max(lo, 0), min(hi, MapSizeChunks)
}

// ToScreen returns the top-left pixel where block (x, y) is drawn.
func (c Camera) ToScreen(x, y int) (sx, sy int) {
	return x*BlockSize + c.OffsetX, c.Height - y*BlockSize - BlockSize + c.OffsetY
}

// ToBlock is the exact inverse of ToScreen for every pixel of a block.
func (c Camera) ToBlock(sx, sy int) (x, y int) {
	return floorDiv(sx-c.OffsetX, BlockSize), floorDiv(c.Height+c.OffsetY-sy-1, BlockSize)
}
