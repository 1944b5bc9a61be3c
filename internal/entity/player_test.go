package entity

import (
	"io"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"terra2d/internal/registry"
	"terra2d/internal/world"
)

type emptyGenerator struct{}

func (emptyGenerator) SurfaceHeight(int) int { return 0 }

func (emptyGenerator) GenerateChunk(int) *[world.ChunkWidth][world.MapHeight]*world.Block {
	return &[world.ChunkWidth][world.MapHeight]*world.Block{}
}

// newTestWorld builds an empty world with a stone floor row at y=floor
// across the first chunks.
func newTestWorld(t *testing.T, floor int) *world.World {
	t.Helper()
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("registry.Default() error: %v", err)
	}
	w := world.New(reg, 1000000,
		world.WithGenerator(emptyGenerator{}),
		world.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	for i := range 8 {
		if err := w.GenerateChunk(i); err != nil {
			t.Fatalf("GenerateChunk(%d) error: %v", i, err)
		}
	}
	if floor >= 0 {
		for x := 0; x < 8*world.ChunkWidth; x++ {
			if err := w.SetBlock(x, floor, "stone"); err != nil {
				t.Fatalf("SetBlock error: %v", err)
			}
		}
	}
	return w
}

func TestBodyLandsOnBlock(t *testing.T) {
	w := newTestWorld(t, -1)
	if err := w.SetBlock(5, 9, "stone"); err != nil {
		t.Fatalf("SetBlock error: %v", err)
	}
	b := NewBody(mgl64.Vec2{5, 10}, mgl64.Vec2{PlayerWidth, PlayerHeight})
	b.Vel = mgl64.Vec2{0, -0.5}

	b.step(w, TickDelta)

	if b.Pos.Y() != 10 {
		t.Errorf("Expected y to snap to 10, got %v", b.Pos.Y())
	}
	if b.Vel.Y() != 0 {
		t.Errorf("Expected vy=0, got %v", b.Vel.Y())
	}
	if !b.OnGround {
		t.Errorf("Expected body on ground")
	}
	if b.Prev != (mgl64.Vec2{5, 10}) {
		t.Errorf("Expected previous position (5,10), got %v", b.Prev)
	}
}

func TestBodyNeverLeavesLeftEdge(t *testing.T) {
	w := newTestWorld(t, 4)
	p := NewPlayer(mgl64.Vec2{0.3, 5})
	w.AddEntity(world.GroupPlayers, p)
	p.Controls.Left = true

	for range 20 {
		p.Update(w)
		if p.Pos.X() < 0 {
			t.Fatalf("Player x=%v went below 0", p.Pos.X())
		}
	}
	if p.Pos.X() != 0 {
		t.Errorf("Expected player pinned at x=0, got %v", p.Pos.X())
	}
}

func TestTerminalVelocity(t *testing.T) {
	w := newTestWorld(t, -1)
	p := NewPlayer(mgl64.Vec2{10, 250})
	for range 300 {
		p.Update(w)
		if v := p.Vel.Y(); v < -TerminalVelocity {
			t.Fatalf("Fall speed %v beyond terminal velocity", v)
		}
	}
	if p.Pos.Y() != 0 || !p.OnGround {
		t.Errorf("Expected player resting on the map floor, got y=%v onGround=%v", p.Pos.Y(), p.OnGround)
	}
}

func TestJumpRequiresGround(t *testing.T) {
	w := newTestWorld(t, 4)
	p := NewPlayer(mgl64.Vec2{10, 5})
	p.Update(w)
	if !p.OnGround {
		t.Fatalf("Expected player on ground at y=5")
	}

	if !p.Jump() {
		t.Fatalf("Expected jump from ground to succeed")
	}
	if p.Vel.Y() != JumpStrength {
		t.Errorf("Expected vy=%v, got %v", JumpStrength, p.Vel.Y())
	}
	p.Update(w)
	if p.OnGround {
		t.Errorf("Expected player airborne after jumping")
	}
	if p.Jump() {
		t.Errorf("Expected mid-air jump to be refused")
	}
	if p.State() != StateAirborne {
		t.Errorf("Expected airborne state, got %v", p.State())
	}
	if p.AnimationCounter() != airFrame*ticksPerFrame {
		t.Errorf("Expected airborne animation counter %d, got %d", airFrame*ticksPerFrame, p.AnimationCounter())
	}

	p.ToggleFlying()
	if p.Jump() {
		t.Errorf("Expected jump while flying to be refused")
	}
}

func TestFlyingIgnoresGravity(t *testing.T) {
	w := newTestWorld(t, -1)
	p := NewPlayer(mgl64.Vec2{10, 50})
	p.ToggleFlying()

	p.Update(w)
	if p.Pos.Y() != 50 {
		t.Errorf("Expected hovering at y=50, got %v", p.Pos.Y())
	}

	p.Controls = Controls{Up: true, Right: true}
	p.Update(w)
	if want := FlySpeed * 2 / 3; p.Vel.Y() != want {
		t.Errorf("Expected vy=%v, got %v", want, p.Vel.Y())
	}
	if p.Vel.X() != FlySpeed {
		t.Errorf("Expected vx=%v, got %v", FlySpeed, p.Vel.X())
	}
	if p.WalkingTime() != 1 {
		t.Errorf("Expected walking time 1 while flying, got %d", p.WalkingTime())
	}
	if p.State() != StateFlying {
		t.Errorf("Expected flying state, got %v", p.State())
	}
}

func TestWalkingCountersAndFootsteps(t *testing.T) {
	w := newTestWorld(t, 4)
	p := NewPlayer(mgl64.Vec2{10, 5})
	w.AddEntity(world.GroupPlayers, p)
	p.Update(w)

	p.Controls.Right = true
	steps := 0
	for i := 1; i <= footstepInterval*2; i++ {
		p.Update(w)
		if p.Footstep() {
			steps++
		}
	}
	if p.WalkingTime() != footstepInterval*2 {
		t.Errorf("Expected walking time %d, got %d", footstepInterval*2, p.WalkingTime())
	}
	if steps != 2 {
		t.Errorf("Expected 2 footsteps, got %d", steps)
	}
	if p.Facing != FacingRight {
		t.Errorf("Expected facing right")
	}
	if c := p.AnimationCounter(); c < 0 || c > walkFrames*ticksPerFrame {
		t.Errorf("Walking animation counter %d out of range", c)
	}

	p.Controls = Controls{Left: true}
	p.Update(w)
	if p.Facing != FacingLeft {
		t.Errorf("Expected facing left")
	}

	p.Controls = Controls{}
	p.Update(w)
	if p.WalkingTime() != 0 || p.AnimationCounter() != 0 {
		t.Errorf("Expected counters reset when idle, got walking=%d anim=%d", p.WalkingTime(), p.AnimationCounter())
	}
	if p.Vel.X() != 0 {
		t.Errorf("Expected vx=0 with no horizontal input, got %v", p.Vel.X())
	}
}

func TestPositionXIsQuantised(t *testing.T) {
	w := newTestWorld(t, 4)
	p := NewPlayer(mgl64.Vec2{10.123456789, 5})
	p.Update(w)
	if p.Pos.X() != 10.1235 {
		t.Errorf("Expected x quantised to 10.1235, got %v", p.Pos.X())
	}
}
