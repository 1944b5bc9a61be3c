package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"terra2d/internal/physics"
	"terra2d/internal/profiling"
	"terra2d/internal/world"
)

// Kinematic constants, in blocks and ticks.
const (
	Gravity          = 0.015
	TerminalVelocity = 1.5
	DeltaMult        = 1.1

	// TickDelta is the integration step of one logic tick.
	TickDelta = 1 * DeltaMult

	positionPrecision = 1e4
)

// Facing is the horizontal direction an entity looks in.
type Facing uint8

const (
	FacingLeft Facing = iota
	FacingRight
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// Body is the kinematic state shared by every entity.
type Body struct {
	ID uuid.UUID
	physics.Body
	Prev     mgl64.Vec2
	Facing   Facing
	OnGround bool
}

// NewBody creates a body at pos with the given size in blocks.
func NewBody(pos, size mgl64.Vec2) Body {
	return Body{
		ID:     uuid.New(),
		Body:   physics.Body{Pos: pos, Size: size},
		Prev:   pos,
		Facing: FacingRight,
	}
}

// Position returns the lower-left corner of the body.
func (b *Body) Position() mgl64.Vec2 { return b.Pos }

// SetPosition teleports the body and clears its motion.
func (b *Body) SetPosition(p mgl64.Vec2) {
	b.Pos = p
	b.Prev = p
	b.Vel = mgl64.Vec2{}
}

// step runs collision, integration and the post-integration clean up for
// one tick. Velocity must already hold this tick's input and gravity.
func (b *Body) step(w *world.World, dt float64) {
	defer profiling.Track("entity.step")()
	b.Prev = b.Pos

	physics.ClampToWorld(&b.Body, dt)
	physics.ResolveBlocks(w, &b.Body, dt)

	b.Pos = b.Pos.Add(b.Vel.Mul(dt))

	b.Vel[0] = clampAbs(b.Vel[0], TerminalVelocity)
	b.Vel[1] = clampAbs(b.Vel[1], TerminalVelocity)

	// Suppress float drift on the horizontal axis.
	b.Pos[0] = math.Round(b.Pos[0]*positionPrecision) / positionPrecision

	b.OnGround = physics.OnGround(w, &b.Body)
}

func clampAbs(v, limit float64) float64 {
	return min(max(v, -limit), limit)
}
