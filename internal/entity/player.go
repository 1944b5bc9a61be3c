package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"terra2d/internal/world"
)

const (
	JumpStrength = 0.5
	WalkSpeed    = 0.25
	FlySpeed     = 0.4

	// Player hitbox in blocks.
	PlayerWidth  = 1.0
	PlayerHeight = 2.0

	footstepInterval = 19
	walkFrames       = 12
	airFrame         = 13
	ticksPerFrame    = 4
)

// Controls are the movement keys currently held.
type Controls struct {
	Left, Right, Up, Down bool
}

func (c Controls) horizontal() bool { return c.Left || c.Right }

// State is the movement mode selected each tick.
type State uint8

const (
	StateGrounded State = iota
	StateAirborne
	StateFlying
)

func (s State) String() string {
	switch s {
	case StateGrounded:
		return "grounded"
	case StateAirborne:
		return "airborne"
	case StateFlying:
		return "flying"
	default:
		return "unknown"
	}
}

// Player is the input driven entity.
type Player struct {
	Body
	Flying   bool
	Controls Controls

	walkingTime      int
	animationCounter int
	footstep         bool
}

var _ world.Entity = (*Player)(nil)

// NewPlayer creates a player standing at pos.
func NewPlayer(pos mgl64.Vec2) *Player {
	return &Player{Body: NewBody(pos, mgl64.Vec2{PlayerWidth, PlayerHeight})}
}

// State reports the current movement mode.
func (p *Player) State() State {
	switch {
	case p.Flying:
		return StateFlying
	case p.OnGround:
		return StateGrounded
	default:
		return StateAirborne
	}
}

// Jump launches the player if it is standing still vertically on the
// ground. It reports whether the jump happened.
func (p *Player) Jump() bool {
	if p.Flying || !p.OnGround || p.Vel.Y() != 0 {
		return false
	}
	p.Vel[1] = JumpStrength
	return true
}

func (p *Player) ToggleFlying() { p.Flying = !p.Flying }

func (p *Player) WalkingTime() int      { return p.walkingTime }
func (p *Player) AnimationCounter() int { return p.animationCounter }

// AnimationFrame is the sprite frame for the current counter.
func (p *Player) AnimationFrame() int { return p.animationCounter / ticksPerFrame }

// RestoreCounters sets the animation bookkeeping. Used when loading saves.
func (p *Player) RestoreCounters(walkingTime, animationCounter int) {
	p.walkingTime = walkingTime
	p.animationCounter = animationCounter
}

// Footstep reports whether a footstep sound is due this tick.
func (p *Player) Footstep() bool { return p.footstep }

// Update applies controls and gravity, then moves the player.
func (p *Player) Update(w *world.World) {
	dt := TickDelta
	c := p.Controls

	if p.Flying {
		switch {
		case c.Up:
			p.Vel[1] = FlySpeed * 2 / 3
		case c.Down:
			p.Vel[1] = -FlySpeed * 2 / 3
		default:
			p.Vel[1] = 0
		}
		p.Vel[0] = horizontalVelocity(c, FlySpeed)
	} else {
		p.Vel[0] = horizontalVelocity(c, WalkSpeed)
		p.Vel[1] -= Gravity * dt
	}

	if c.horizontal() && ((p.Vel.X() != 0 && p.OnGround) || p.Flying) {
		p.walkingTime++
	} else {
		p.walkingTime = 0
	}

	if p.Vel.X() < 0 {
		p.Facing = FacingLeft
	} else if p.Vel.X() > 0 {
		p.Facing = FacingRight
	}

	p.footstep = !p.Flying && p.walkingTime != 0 && p.walkingTime%footstepInterval == 0

	p.step(w, dt)

	// Walking animation
	if c.horizontal() {
		p.animationCounter--
		if p.animationCounter < 0 {
			p.animationCounter = walkFrames * ticksPerFrame
		}
	}
	if !(p.OnGround || p.Flying) {
		p.animationCounter = airFrame * ticksPerFrame
	} else if !c.horizontal() {
		p.animationCounter = 0
	}
}

func horizontalVelocity(c Controls, speed float64) float64 {
	switch {
	case c.Left && !c.Right:
		return -speed
	case c.Right:
		return speed
	default:
		return 0
	}
}
