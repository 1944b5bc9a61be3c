package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Action represents a logical game action, not a physical key
type Action int

// Action constants using iota
const (
	ActionMoveLeft Action = iota
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionStop
	ActionJump
	ActionToggleFlying
	ActionCycleForward
	ActionCycleBack
	ActionPoint
	ActionPlace
	ActionRemove
	ActionMine
	ActionBuild
	ActionToggleHitboxes
	ActionSave
	ActionLoad
	ActionNewWorld
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

var actionNames = [ActionCount]string{
	"move-left", "move-right", "move-up", "move-down", "stop", "jump",
	"toggle-flying", "cycle-forward", "cycle-back", "point", "place",
	"remove", "mine", "build", "toggle-hitboxes", "save", "load",
	"new-world", "quit",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return "unknown"
	}
	return actionNames[a]
}

// NeedsPoint reports whether the action takes screen coordinates.
func (a Action) NeedsPoint() bool {
	return a == ActionPoint || a == ActionPlace || a == ActionRemove
}

// Session actions are handled by the runner instead of the logic tick.
func (a Action) Session() bool {
	return a == ActionSave || a == ActionLoad || a == ActionNewWorld || a == ActionQuit
}

var (
	ErrEmptyCommand   = errors.New("input: empty command")
	ErrUnknownCommand = errors.New("input: unknown command")
)

// Command is one parsed line of input.
type Command struct {
	Action Action
	// X, Y are screen pixels for actions that need a point.
	X, Y int
	// Arg is the save path or seed for session actions.
	Arg string
}

// InputManager maps command words to actions. One action may have several
// words bound to it.
type InputManager struct {
	mu       sync.RWMutex
	bindings map[string]Action
}

// NewInputManager creates a new InputManager with default bindings
func NewInputManager() *InputManager {
	im := &InputManager{bindings: make(map[string]Action)}

	im.Bind("a", ActionMoveLeft)
	im.Bind("left", ActionMoveLeft)
	im.Bind("d", ActionMoveRight)
	im.Bind("right", ActionMoveRight)
	im.Bind("w", ActionMoveUp)
	im.Bind("up", ActionMoveUp)
	im.Bind("s", ActionMoveDown)
	im.Bind("down", ActionMoveDown)
	im.Bind("x", ActionStop)
	im.Bind("stop", ActionStop)
	im.Bind("space", ActionJump)
	im.Bind("jump", ActionJump)
	im.Bind("f", ActionToggleFlying)
	im.Bind("fly", ActionToggleFlying)
	im.Bind("e", ActionCycleForward)
	im.Bind("next", ActionCycleForward)
	im.Bind("q", ActionCycleBack)
	im.Bind("prev", ActionCycleBack)
	im.Bind("point", ActionPoint)
	im.Bind("place", ActionPlace)
	im.Bind("remove", ActionRemove)
	im.Bind("mine", ActionMine)
	im.Bind("build", ActionBuild)
	im.Bind("h", ActionToggleHitboxes)
	im.Bind("hitboxes", ActionToggleHitboxes)
	im.Bind("save", ActionSave)
	im.Bind("load", ActionLoad)
	im.Bind("new", ActionNewWorld)
	im.Bind("quit", ActionQuit)
	im.Bind("exit", ActionQuit)

	return im
}

// Bind binds a command word to a logical action
func (im *InputManager) Bind(word string, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	im.bindings[strings.ToLower(word)] = action
}

// Unbind removes a word binding
func (im *InputManager) Unbind(word string) {
	im.mu.Lock()
	defer im.mu.Unlock()
	delete(im.bindings, strings.ToLower(word))
}

// Parse turns a line such as "place 120 80" or "save slot1" into a Command.
func (im *InputManager) Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	im.mu.RLock()
	action, ok := im.bindings[strings.ToLower(fields[0])]
	im.mu.RUnlock()
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	cmd := Command{Action: action}
	args := fields[1:]

	switch {
	case action.NeedsPoint():
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%s: expected x and y, got %d arguments", action, len(args))
		}
		var err error
		if cmd.X, err = strconv.Atoi(args[0]); err != nil {
			return Command{}, fmt.Errorf("%s: x: %w", action, err)
		}
		if cmd.Y, err = strconv.Atoi(args[1]); err != nil {
			return Command{}, fmt.Errorf("%s: y: %w", action, err)
		}
	case action == ActionSave || action == ActionLoad:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%s: expected a path", action)
		}
		cmd.Arg = args[0]
	case action == ActionNewWorld:
		cmd.Arg = strings.Join(args, " ")
	default:
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s: unexpected arguments %q", action, args)
		}
	}
	return cmd, nil
}
