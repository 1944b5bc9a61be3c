package storage

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"terra2d/internal/entity"
	"terra2d/internal/registry"
	"terra2d/internal/world"
)

const kindPlayer = "player"

const cellsPerChunk = world.ChunkWidth * world.MapHeight

// Capture copies w into a snapshot. It must run on the goroutine that
// drives w.
func Capture(w *world.World) *SnapshotV1 {
	sky := w.Sky()
	snap := &SnapshotV1{
		Header: Header{
			Version: Version,
			Seed:    w.Seed(),
			Tick:    w.Ticks(),
			Digest:  w.Registry().Digest(),
			SavedAt: time.Now().UTC(),
		},
		Seed:         w.Seed(),
		Tick:         w.Ticks(),
		PlaceIndex:   w.PlaceIndex(),
		ShowHitboxes: w.ShowingHitboxes(),
		SkyFloat:     sky.FloatState,
		SkyFrame:     sky.Frame,
	}

	for _, c := range w.Store().All() {
		if c.IsGenerated() {
			snap.Chunks = append(snap.Chunks, captureChunk(c))
		}
	}

	groups := w.Entities()
	for _, e := range groups.Group(world.GroupEverything) {
		p, ok := e.(*entity.Player)
		if !ok {
			w.Logger().Warn("skipping unsaveable entity", "type", fmt.Sprintf("%T", e))
			continue
		}
		ev := capturePlayer(p)
		for _, g := range groups.GroupsOf(e) {
			ev.Groups = append(ev.Groups, g.String())
		}
		snap.Entities = append(snap.Entities, ev)
	}
	return snap
}

func captureChunk(c *world.Chunk) ChunkV1 {
	cv := ChunkV1{
		OriginX: c.OriginX,
		Blocks:  make([]string, cellsPerChunk),
		Sources: make([]uint8, cellsPerChunk),
		Light:   make([]float64, cellsPerChunk),
	}
	for lx := range world.ChunkWidth {
		x := c.OriginX + lx
		for y := range world.MapHeight {
			i := lx*world.MapHeight + y
			cv.Light[i] = c.Light(x, y)
			if b := c.Block(x, y); b != nil {
				cv.Blocks[i] = b.Type()
				cv.Sources[i] = uint8(b.Source)
			}
		}
	}
	return cv
}

func capturePlayer(p *entity.Player) EntityV1 {
	return EntityV1{
		ID:               p.ID.String(),
		Kind:             kindPlayer,
		Pos:              p.Pos,
		Prev:             p.Prev,
		Vel:              p.Vel,
		Size:             p.Size,
		Facing:           uint8(p.Facing),
		OnGround:         p.OnGround,
		Flying:           p.Flying,
		WalkingTime:      p.WalkingTime(),
		AnimationCounter: p.AnimationCounter(),
	}
}

// Restore builds a new world from snap. Block names are resolved against
// reg; a digest mismatch is tolerated as long as every name resolves.
func Restore(snap *SnapshotV1, reg *registry.Registry, opts ...world.Option) (*world.World, error) {
	w := world.New(reg, snap.Seed, opts...)
	if snap.Header.Digest != "" && snap.Header.Digest != reg.Digest() {
		w.Logger().Warn("save was written with a different block registry",
			"saved", snap.Header.Digest, "current", reg.Digest())
	}

	for _, cv := range snap.Chunks {
		if err := restoreChunk(w, reg, cv); err != nil {
			return nil, err
		}
	}
	for _, ev := range snap.Entities {
		if err := restoreEntity(w, ev); err != nil {
			return nil, err
		}
	}

	w.RestoreTicks(snap.Tick)
	w.SetPlaceIndex(snap.PlaceIndex)
	w.RestoreSky(world.Sky{FloatState: snap.SkyFloat, Frame: snap.SkyFrame})
	if snap.ShowHitboxes != w.ShowingHitboxes() {
		w.ToggleHitboxes()
	}
	return w, nil
}

func restoreChunk(w *world.World, reg *registry.Registry, cv ChunkV1) error {
	if len(cv.Blocks) != cellsPerChunk || len(cv.Sources) != cellsPerChunk || len(cv.Light) != cellsPerChunk {
		return fmt.Errorf("%w: chunk at x=%d has %d cells", ErrCorruptSave, cv.OriginX, len(cv.Blocks))
	}
	c, err := w.ChunkAtBlock(cv.OriginX)
	if err != nil || c.OriginX != cv.OriginX {
		return fmt.Errorf("%w: chunk origin %d", ErrCorruptSave, cv.OriginX)
	}

	blocks := new([world.ChunkWidth][world.MapHeight]*world.Block)
	light := new([world.ChunkWidth][world.MapHeight]float64)
	for lx := range world.ChunkWidth {
		for y := range world.MapHeight {
			i := lx*world.MapHeight + y
			light[lx][y] = cv.Light[i]
			name := cv.Blocks[i]
			if name == "" {
				continue
			}
			def, err := reg.Lookup(name)
			if err != nil {
				return fmt.Errorf("chunk at x=%d: %w", cv.OriginX, err)
			}
			b := world.NewBlock(def, cv.OriginX+lx, y)
			if b.IsFluid() {
				b.Source = world.SourceDirection(cv.Sources[i])
			}
			blocks[lx][y] = b
		}
	}
	c.Restore(blocks, light, true)
	return nil
}

func restoreEntity(w *world.World, ev EntityV1) error {
	if ev.Kind != kindPlayer {
		return fmt.Errorf("%w: unknown entity kind %q", ErrCorruptSave, ev.Kind)
	}
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		return fmt.Errorf("%w: entity id: %v", ErrCorruptSave, err)
	}

	p := entity.NewPlayer(mgl64.Vec2(ev.Pos))
	p.ID = id
	p.Prev = ev.Prev
	p.Vel = ev.Vel
	p.Size = ev.Size
	p.Facing = entity.Facing(ev.Facing)
	p.OnGround = ev.OnGround
	p.Flying = ev.Flying
	p.RestoreCounters(ev.WalkingTime, ev.AnimationCounter)

	group := world.GroupEverything
	for _, name := range ev.Groups {
		g, ok := world.ParseGroup(name)
		if !ok {
			return fmt.Errorf("%w: unknown entity group %q", ErrCorruptSave, name)
		}
		if g != world.GroupEverything {
			group = g
		}
	}
	w.AddEntity(group, p)
	return nil
}
