package world

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"terra2d/internal/profiling"
	"terra2d/internal/registry"
)

const (
	MapSizeChunks = 200
	MapWidth      = MapSizeChunks * ChunkWidth
	BlockSize     = 8
	SpreadTime    = 5
)

var (
	ErrChunkOutOfRange   = errors.New("world: chunk index out of range")
	ErrOutOfBounds       = errors.New("world: coordinate out of bounds")
	ErrChunkNotGenerated = errors.New("world: chunk not generated")
)

// Entity is anything the world ticks. Implementations live in the entity
// package; the world only needs to drive them and find players.
type Entity interface {
	Update(w *World)
	Position() mgl64.Vec2
}

// World owns the chunks, entities and per-session state of one map.
// It is not safe for concurrent use; a single logic goroutine drives it.
type World struct {
	reg  *registry.Registry
	gen  TerrainGenerator
	log  *slog.Logger
	seed int64

	store    *ChunkStore
	entities *EntityGroups
	camera   Camera
	sky      Sky

	placeable  []string
	placeIndex int

	ticks        uint64
	showHitboxes bool

	pointerX, pointerY int
	hasPointer         bool
}

// Option configures a World at construction.
type Option func(*World)

// WithLogger sets the logger used for per-chunk and per-entity failures.
func WithLogger(log *slog.Logger) Option {
	return func(w *World) { w.log = log }
}

// WithGenerator replaces the default noise terrain generator.
func WithGenerator(gen TerrainGenerator) Option {
	return func(w *World) { w.gen = gen }
}

// WithViewport sets the camera viewport in pixels.
func WithViewport(width, height int) Option {
	return func(w *World) { w.camera = NewCamera(width, height) }
}

// New creates a world with every chunk slot allocated but ungenerated.
func New(reg *registry.Registry, seed int64, opts ...Option) *World {
	w := &World{
		reg:       reg,
		log:       slog.Default(),
		seed:      seed,
		store:     NewChunkStore(),
		entities:  NewEntityGroups(),
		camera:    NewCamera(DefaultViewportWidth, DefaultViewportHeight),
		sky:       newSky(),
		placeable: reg.Placeable(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.gen == nil {
		w.gen = NewGenerator(reg, seed)
	}
	return w
}

func (w *World) Seed() int64                  { return w.seed }
func (w *World) Registry() *registry.Registry { return w.reg }
func (w *World) Logger() *slog.Logger         { return w.log }
func (w *World) Ticks() uint64                { return w.ticks }
func (w *World) Store() *ChunkStore           { return w.store }
func (w *World) Entities() *EntityGroups      { return w.entities }
func (w *World) Camera() *Camera              { return &w.camera }
func (w *World) Sky() Sky                     { return w.sky }

// RestoreTicks sets the tick counter. Used when loading saves.
func (w *World) RestoreTicks(n uint64) { w.ticks = n }

// RestoreSky sets the sun animation state. Used when loading saves.
func (w *World) RestoreSky(s Sky) { w.sky = s }

func (w *World) ShowingHitboxes() bool { return w.showHitboxes }
func (w *World) ToggleHitboxes()       { w.showHitboxes = !w.showHitboxes }

// ChunkAtBlock returns the chunk containing world column x.
func (w *World) ChunkAtBlock(x int) (*Chunk, error) {
	return w.store.ChunkAtBlock(x)
}

// Block returns the block at x, y or nil for air and out-of-range cells.
func (w *World) Block(x, y int) *Block {
	if y < 0 || y >= MapHeight {
		return nil
	}
	c, err := w.store.ChunkAtBlock(x)
	if err != nil {
		return nil
	}
	return c.Block(x, y)
}

// LightAt returns the light level at x, y. Out-of-range and ungenerated
// cells are dark.
func (w *World) LightAt(x, y int) float64 {
	if y < 0 || y >= MapHeight {
		return 0
	}
	c, err := w.store.ChunkAtBlock(x)
	if err != nil || !c.IsGenerated() {
		return 0
	}
	return c.Light(x, y)
}

func (w *World) editableChunk(x, y int) (*Chunk, error) {
	if y < 0 || y >= MapHeight {
		return nil, fmt.Errorf("y=%d: %w", y, ErrOutOfBounds)
	}
	c, err := w.store.ChunkAtBlock(x)
	if err != nil {
		return nil, err
	}
	if !c.IsGenerated() {
		return nil, fmt.Errorf("x=%d: %w", x, ErrChunkNotGenerated)
	}
	return c, nil
}

// SetBlock places a block of the named type at x, y, replacing whatever
// was there, and relights around the edit.
func (w *World) SetBlock(x, y int, name string) error {
	if name == registry.AirName {
		return w.RemoveBlock(x, y)
	}
	def, err := w.reg.Lookup(name)
	if err != nil {
		return err
	}
	c, err := w.editableChunk(x, y)
	if err != nil {
		return err
	}
	w.put(c, x, y, NewBlock(def, x, y))
	return nil
}

// RemoveBlock clears the cell at x, y. Removing air is not an error.
func (w *World) RemoveBlock(x, y int) error {
	c, err := w.editableChunk(x, y)
	if err != nil {
		return err
	}
	w.put(c, x, y, nil)
	return nil
}

func (w *World) put(c *Chunk, x, y int, b *Block) {
	oldTop := c.top(x)
	c.SetBlock(x, y, b)
	w.relight(c, x, y, oldTop)
}

// SelectedBlock is the block type the cursor points at.
func (w *World) SelectedBlock() string {
	if len(w.placeable) == 0 {
		return ""
	}
	return w.placeable[w.placeIndex]
}

// PlaceIndex returns the cursor position in the placeable list.
func (w *World) PlaceIndex() int { return w.placeIndex }

// SetPlaceIndex moves the cursor, wrapping out-of-range values.
func (w *World) SetPlaceIndex(i int) {
	if n := len(w.placeable); n > 0 {
		w.placeIndex = ((i % n) + n) % n
	}
}

func (w *World) CyclePlaceForward() { w.SetPlaceIndex(w.placeIndex + 1) }
func (w *World) CyclePlaceBack()    { w.SetPlaceIndex(w.placeIndex - 1) }

// PlaceSelected puts the cursor block at x, y.
func (w *World) PlaceSelected(x, y int) error {
	return w.SetBlock(x, y, w.SelectedBlock())
}

// AddEntity registers e under group and always under GroupEverything.
func (w *World) AddEntity(group Group, e Entity) {
	w.entities.Add(group, e)
}

// Players returns every entity in GroupPlayers.
func (w *World) Players() []Entity {
	return w.entities.Group(GroupPlayers)
}

// SetPointer records the presentation layer's pointer in screen pixels.
func (w *World) SetPointer(sx, sy int) {
	w.pointerX, w.pointerY = sx, sy
	w.hasPointer = true
}

// ClearPointer forgets the pointer.
func (w *World) ClearPointer() { w.hasPointer = false }

// BlockCoordsAtScreen converts a screen pixel to block coordinates. ok is
// false when the result is outside the map.
func (w *World) BlockCoordsAtScreen(sx, sy int) (x, y int, ok bool) {
	x, y = w.camera.ToBlock(sx, sy)
	if x < 0 || x >= MapWidth || y < 0 || y >= MapHeight {
		return x, y, false
	}
	return x, y, true
}

// BlockAtScreen returns the block drawn at a screen pixel, or nil.
func (w *World) BlockAtScreen(sx, sy int) *Block {
	x, y, ok := w.BlockCoordsAtScreen(sx, sy)
	if !ok {
		return nil
	}
	return w.Block(x, y)
}

// PlaceAtScreen puts the cursor block at the cell under a screen pixel.
func (w *World) PlaceAtScreen(sx, sy int) error {
	x, y, ok := w.BlockCoordsAtScreen(sx, sy)
	if !ok {
		return fmt.Errorf("screen (%d,%d): %w", sx, sy, ErrOutOfBounds)
	}
	return w.PlaceSelected(x, y)
}

// RemoveAtScreen clears the cell under a screen pixel.
func (w *World) RemoveAtScreen(sx, sy int) error {
	x, y, ok := w.BlockCoordsAtScreen(sx, sy)
	if !ok {
		return fmt.Errorf("screen (%d,%d): %w", sx, sy, ErrOutOfBounds)
	}
	return w.RemoveBlock(x, y)
}

// GenerateChunk generates chunk i if needed and sweeps its light.
func (w *World) GenerateChunk(i int) error {
	c, err := w.store.ChunkAt(i)
	if err != nil {
		return err
	}
	if c.Generate(w.gen) {
		w.sweepLight(c)
	}
	return nil
}

// Update advances the world by one logic tick.
func (w *World) Update() {
	defer profiling.Track("world.Update")()

	if players := w.Players(); len(players) > 0 {
		w.camera.Follow(players[0].Position())
	}

	lo, hi := w.camera.ChunkWindow()
	for i := lo; i < hi; i++ {
		c, err := w.store.ChunkAt(i)
		if err != nil {
			w.log.Warn("chunk update skipped", "chunk", i, "error", err)
			continue
		}
		if c.Generate(w.gen) {
			w.sweepLight(c)
		}
		w.updateChunk(c)
	}

	w.updateEntities()
	w.sky.advance(w.ticks)

	if w.hasPointer {
		if b := w.BlockAtScreen(w.pointerX, w.pointerY); b != nil {
			b.highlighted = true
		}
	}
	w.ticks++
}

// updateChunk runs block updates and the light sweep for c. A failure is
// logged and confined to this chunk.
func (w *World) updateChunk(c *Chunk) {
	defer profiling.Track("world.updateChunk")()
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("chunk update failed", "chunk", floorDiv(c.OriginX, ChunkWidth), "panic", r)
		}
	}()
	c.update(w)
	w.sweepLight(c)
}

func (w *World) updateEntities() {
	defer profiling.Track("world.updateEntities")()
	for _, e := range w.entities.Group(GroupEverything) {
		w.updateEntity(e)
	}
}

func (w *World) updateEntity(e Entity) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("entity update failed", "entity", fmt.Sprintf("%T", e), "panic", r)
		}
	}()
	e.Update(w)
}
