package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"terra2d/internal/entity"
	"terra2d/internal/input"
	"terra2d/internal/registry"
	"terra2d/internal/storage"
	"terra2d/internal/world"
)

const floorHeight = 4

// flatGenerator fills every column with stone up to and including height.
type flatGenerator struct {
	height int
	stone  *registry.BlockDefinition
}

func (g *flatGenerator) SurfaceHeight(int) int { return g.height }

func (g *flatGenerator) GenerateChunk(originX int) *[world.ChunkWidth][world.MapHeight]*world.Block {
	var blocks [world.ChunkWidth][world.MapHeight]*world.Block
	for lx := range world.ChunkWidth {
		for y := 0; y <= g.height; y++ {
			blocks[lx][y] = world.NewBlock(g.stone, originX+lx, y)
		}
	}
	return &blocks
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	reg, err := registry.Default()
	if err != nil {
		t.Fatalf("registry.Default() error: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := &flatGenerator{height: floorHeight, stone: reg.MustGet("stone")}
	opts = append([]Option{
		WithPregenerateRadius(1),
		WithWorldOptions(world.WithGenerator(gen)),
	}, opts...)
	return NewSession(reg, log, opts...)
}

func awaitEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(10 * time.Second):
		t.Fatalf("Timed out waiting for session event")
		return Event{}
	}
}

func startWorld(t *testing.T, s *Session) *world.World {
	t.Helper()
	if err := s.NewWorld(context.Background(), 1000000); err != nil {
		t.Fatalf("NewWorld() error: %v", err)
	}
	if ev := awaitEvent(t, s); ev.Kind != EventCreated {
		t.Fatalf("Expected created event, got %v (%v)", ev.Kind, ev.Err)
	}
	return s.World()
}

func player(t *testing.T, w *world.World) *entity.Player {
	t.Helper()
	p, err := firstPlayer(w)
	if err != nil {
		t.Fatalf("firstPlayer() error: %v", err)
	}
	return p
}

func TestNewWorldSpawnsPlayerOnGround(t *testing.T) {
	s := newTestSession(t)
	if s.World() != nil {
		t.Fatalf("Expected no world before NewWorld")
	}
	w := startWorld(t, s)
	p := player(t, w)
	if p.Pos.X() != SpawnX || p.Pos.Y() != floorHeight+1 {
		t.Errorf("Expected spawn at (%d,%d), got %v", SpawnX, floorHeight+1, p.Pos)
	}
	if s.Loading() || s.Busy() {
		t.Errorf("Expected session idle after new world")
	}

	s.Tick()
	if !p.OnGround || p.Pos.Y() != floorHeight+1 {
		t.Errorf("Expected player to rest on the floor, got y=%v onGround=%v", p.Pos.Y(), p.OnGround)
	}
	if w.Ticks() != 1 {
		t.Errorf("Expected 1 tick, got %d", w.Ticks())
	}
}

func TestBusyGuardRejectsConcurrentRequests(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	if err := s.NewWorld(ctx, 1000000); err != nil {
		t.Fatalf("NewWorld() error: %v", err)
	}
	if err := s.NewWorld(ctx, 2000000); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for second NewWorld, got %v", err)
	}
	if err := s.Load(ctx, "anything"); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for Load, got %v", err)
	}
	awaitEvent(t, s)

	path := filepath.Join(t.TempDir(), "busy")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save(path); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy for second Save, got %v", err)
	}
	s.Tick()
	if ev := awaitEvent(t, s); ev.Kind != EventSaved || ev.Path != path+storage.Extension {
		t.Fatalf("Expected saved event for %s, got %+v", path, ev)
	}
	if _, err := os.Stat(path + storage.Extension); err != nil {
		t.Errorf("Expected save file on disk: %v", err)
	}
}

func TestSaveWithoutWorld(t *testing.T) {
	s := newTestSession(t)
	if err := s.Save(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrNoWorld) {
		t.Errorf("Expected ErrNoWorld, got %v", err)
	}
	s.Tick()
}

func TestFailedLoadKeepsWorld(t *testing.T) {
	s := newTestSession(t)
	w := startWorld(t, s)

	if err := s.Load(context.Background(), filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ev := awaitEvent(t, s)
	if ev.Kind != EventFailed || !errors.Is(ev.Err, os.ErrNotExist) {
		t.Errorf("Expected failed event with not-exist error, got %+v", ev)
	}
	if s.World() != w {
		t.Errorf("Expected previous world kept after failed load")
	}
	if s.Loading() || s.Busy() {
		t.Errorf("Expected session idle after failed load")
	}
}

func TestSaveThenLoadThroughSession(t *testing.T) {
	cat, err := storage.OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalog() error: %v", err)
	}
	defer cat.Close()

	s := newTestSession(t, WithCatalog(cat))
	w := startWorld(t, s)
	for range 30 {
		s.Tick()
	}
	want := player(t, w).Pos

	path := filepath.Join(t.TempDir(), "slot.gam")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	s.Tick()
	if ev := awaitEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("Expected saved event, got %+v", ev)
	}
	savedTick := uint64(30)

	list, err := cat.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 || list[0].Path != path || list[0].Tick != savedTick || list[0].Entities != 1 {
		t.Errorf("Unexpected catalog contents %+v", list)
	}

	if err := s.Load(context.Background(), path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ev := awaitEvent(t, s); ev.Kind != EventLoaded {
		t.Fatalf("Expected loaded event, got %+v", ev)
	}
	loaded := s.World()
	if loaded == w {
		t.Fatalf("Expected a new world instance after load")
	}
	if loaded.Ticks() != savedTick || loaded.Seed() != w.Seed() {
		t.Errorf("Expected tick %d seed %d, got tick %d seed %d", savedTick, w.Seed(), loaded.Ticks(), loaded.Seed())
	}
	if got := player(t, loaded).Pos; got != want {
		t.Errorf("Expected player at %v, got %v", want, got)
	}
}

func TestTickPausesWhileLoading(t *testing.T) {
	s := newTestSession(t)
	w := startWorld(t, s)

	s.loading.Store(true)
	if err := s.Submit(input.Command{Action: input.ActionCycleForward}); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	s.Tick()
	if w.Ticks() != 0 || w.PlaceIndex() != 0 {
		t.Errorf("Expected no progress while loading, got tick=%d place=%d", w.Ticks(), w.PlaceIndex())
	}
	s.loading.Store(false)
	s.Tick()
	if w.Ticks() != 1 {
		t.Errorf("Expected tick to resume, got %d", w.Ticks())
	}
}

func TestTickAppliesCommands(t *testing.T) {
	s := newTestSession(t)
	w := startWorld(t, s)
	p := player(t, w)
	s.Tick()

	if err := s.Submit(input.Command{Action: input.ActionSave, Arg: "x"}); err == nil {
		t.Errorf("Expected session action to be rejected by Submit")
	}

	for _, a := range []input.Action{input.ActionCycleForward, input.ActionCycleForward, input.ActionCycleBack, input.ActionToggleHitboxes} {
		if err := s.Submit(input.Command{Action: a}); err != nil {
			t.Fatalf("Submit(%s) error: %v", a, err)
		}
	}
	s.Tick()
	if w.PlaceIndex() != 1 {
		t.Errorf("Expected place index 1, got %d", w.PlaceIndex())
	}
	if !w.ShowingHitboxes() {
		t.Errorf("Expected hitboxes toggled on")
	}

	// The ray from a player facing right at x=25 meets the floor at x=28.
	s.Submit(input.Command{Action: input.ActionMine})
	s.Tick()
	if b := w.Block(28, floorHeight); b != nil {
		t.Errorf("Expected mined cell (28,%d) to be empty, got %s", floorHeight, b.Type())
	}
	s.Submit(input.Command{Action: input.ActionBuild})
	s.Tick()
	if b := w.Block(28, floorHeight); b == nil || b.Type() != w.SelectedBlock() {
		t.Errorf("Expected built %s at (28,%d), got %v", w.SelectedBlock(), floorHeight, b)
	}

	s.Submit(input.Command{Action: input.ActionJump})
	s.Tick()
	if p.OnGround || p.Pos.Y() <= floorHeight+1 {
		t.Errorf("Expected player in the air after jump, got y=%v", p.Pos.Y())
	}

	s.Submit(input.Command{Action: input.ActionMoveLeft})
	s.Tick()
	if !p.Controls.Left || p.Facing != entity.FacingLeft {
		t.Errorf("Expected left held and facing left, got %+v facing %v", p.Controls, p.Facing)
	}
	s.Submit(input.Command{Action: input.ActionStop})
	s.Tick()
	if p.Controls != (entity.Controls{}) {
		t.Errorf("Expected controls released, got %+v", p.Controls)
	}
}

func TestSaveNow(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.SaveNow(filepath.Join(t.TempDir(), "none")); !errors.Is(err, ErrNoWorld) {
		t.Errorf("Expected ErrNoWorld, got %v", err)
	}
	w := startWorld(t, s)
	s.Tick()

	path, err := s.SaveNow(filepath.Join(t.TempDir(), "exit"))
	if err != nil {
		t.Fatalf("SaveNow() error: %v", err)
	}
	snap, err := storage.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if snap.Tick != w.Ticks() || len(snap.Entities) != 1 {
		t.Errorf("Unexpected snapshot tick=%d entities=%d", snap.Tick, len(snap.Entities))
	}
	if s.Busy() {
		t.Errorf("Expected busy guard released")
	}
}

func TestSaveNowFlushesPendingSave(t *testing.T) {
	s := newTestSession(t)
	startWorld(t, s)
	s.Tick()

	dir := t.TempDir()
	manual := filepath.Join(dir, "manual")
	if err := s.Save(manual); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	// The loop stops before another tick picks the request up.
	auto, err := s.SaveNow(filepath.Join(dir, "autosave"))
	if err != nil {
		t.Fatalf("SaveNow() error: %v", err)
	}

	for _, path := range []string{manual + storage.Extension, auto} {
		if _, err := storage.ReadHeader(path); err != nil {
			t.Errorf("Expected readable save at %s: %v", path, err)
		}
	}
	if ev := awaitEvent(t, s); ev.Kind != EventSaved || ev.Path != manual+storage.Extension {
		t.Errorf("Expected saved event for the requested save, got %+v", ev)
	}
	if s.Busy() {
		t.Errorf("Expected busy guard released")
	}
}

func TestSaveNowWaitsForBackgroundSave(t *testing.T) {
	s := newTestSession(t)
	startWorld(t, s)

	dir := t.TempDir()
	if err := s.Save(filepath.Join(dir, "manual")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	s.Tick()
	if _, err := s.SaveNow(filepath.Join(dir, "autosave")); err != nil {
		t.Fatalf("Expected SaveNow to wait for the running save, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "manual"+storage.Extension)); err != nil {
		t.Errorf("Expected background save on disk: %v", err)
	}
}
