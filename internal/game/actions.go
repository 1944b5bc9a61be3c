package game

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"terra2d/internal/entity"
	"terra2d/internal/input"
	"terra2d/internal/physics"
	"terra2d/internal/world"
)

var ErrNoPlayer = errors.New("game: world has no player")

// apply performs a tick command against w. Player commands act on the
// first player.
func apply(w *world.World, cmd input.Command) error {
	switch cmd.Action {
	case input.ActionCycleForward:
		w.CyclePlaceForward()
		return nil
	case input.ActionCycleBack:
		w.CyclePlaceBack()
		return nil
	case input.ActionToggleHitboxes:
		w.ToggleHitboxes()
		return nil
	case input.ActionPoint:
		w.SetPointer(cmd.X, cmd.Y)
		return nil
	case input.ActionPlace:
		return w.PlaceAtScreen(cmd.X, cmd.Y)
	case input.ActionRemove:
		return w.RemoveAtScreen(cmd.X, cmd.Y)
	}

	p, err := firstPlayer(w)
	if err != nil {
		return err
	}
	switch cmd.Action {
	case input.ActionMoveLeft:
		p.Controls.Left, p.Controls.Right = true, false
	case input.ActionMoveRight:
		p.Controls.Right, p.Controls.Left = true, false
	case input.ActionMoveUp:
		p.Controls.Up, p.Controls.Down = true, false
	case input.ActionMoveDown:
		p.Controls.Down, p.Controls.Up = true, false
	case input.ActionStop:
		p.Controls = entity.Controls{}
	case input.ActionJump:
		if !p.Jump() {
			return fmt.Errorf("jump refused in state %s", p.State())
		}
	case input.ActionToggleFlying:
		p.ToggleFlying()
	case input.ActionMine:
		hit := reach(w, p)
		if !hit.Hit {
			return errors.New("nothing in reach")
		}
		return w.RemoveBlock(hit.HitPosition[0], hit.HitPosition[1])
	case input.ActionBuild:
		hit := reach(w, p)
		if !hit.Hit {
			return errors.New("nothing in reach")
		}
		return w.PlaceSelected(hit.AdjacentPosition[0], hit.AdjacentPosition[1])
	default:
		return fmt.Errorf("unhandled action %s", cmd.Action)
	}
	return nil
}

func firstPlayer(w *world.World) (*entity.Player, error) {
	for _, e := range w.Players() {
		if p, ok := e.(*entity.Player); ok {
			return p, nil
		}
	}
	return nil, ErrNoPlayer
}

// reach casts from the player's chest in the facing direction, angled
// slightly down so the block in front of the feet is found first.
func reach(w *world.World, p *entity.Player) physics.RaycastResult {
	start := p.Pos.Add(mgl64.Vec2{p.Size.X() / 2, p.Size.Y() * 0.75})
	dir := mgl64.Vec2{1, -0.5}
	if p.Facing == entity.FacingLeft {
		dir[0] = -1
	}
	return physics.Raycast(w, start, dir, physics.MinReachDistance, physics.MaxReachDistance)
}
