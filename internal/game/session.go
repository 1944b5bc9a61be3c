package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sasha-s/go-deadlock"

	"terra2d/internal/entity"
	"terra2d/internal/input"
	"terra2d/internal/physics"
	"terra2d/internal/profiling"
	"terra2d/internal/registry"
	"terra2d/internal/storage"
	"terra2d/internal/world"
)

// SpawnX is the column a fresh world's player starts in.
const SpawnX = 25

var (
	ErrBusy    = errors.New("game: a save or load is already in progress")
	ErrNoWorld = errors.New("game: no world loaded")
)

type EventKind uint8

const (
	EventSaved EventKind = iota
	EventLoaded
	EventCreated
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventSaved:
		return "saved"
	case EventLoaded:
		return "loaded"
	case EventCreated:
		return "created"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports the outcome of a background save, load or new world.
type Event struct {
	Kind EventKind
	Path string
	Seed int64
	Err  error
}

// Session owns the active world and the background work around it. Tick,
// Submit and the request methods may be called from different goroutines;
// only Tick touches the live world.
type Session struct {
	reg          *registry.Registry
	log          *slog.Logger
	catalog      *storage.Catalog
	worldOpts    []world.Option
	pregenRadius int

	world   atomic.Pointer[world.World]
	busy    atomic.Bool
	loading atomic.Bool

	mu          deadlock.Mutex
	queue       []input.Command
	pendingSave string

	// writers tracks background save goroutines.
	writers sync.WaitGroup

	events chan Event
}

type Option func(*Session)

// WithCatalog records every successful save in c.
func WithCatalog(c *storage.Catalog) Option {
	return func(s *Session) { s.catalog = c }
}

// WithWorldOptions are passed to every world the session builds.
func WithWorldOptions(opts ...world.Option) Option {
	return func(s *Session) { s.worldOpts = append(s.worldOpts, opts...) }
}

// WithPregenerateRadius sets how many chunks either side of spawn a new
// world generates before it is installed.
func WithPregenerateRadius(r int) Option {
	return func(s *Session) { s.pregenRadius = r }
}

func NewSession(reg *registry.Registry, log *slog.Logger, opts ...Option) *Session {
	s := &Session{
		reg:          reg,
		log:          log,
		pregenRadius: 8,
		events:       make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.worldOpts = append([]world.Option{world.WithLogger(log)}, s.worldOpts...)
	return s
}

// World returns the active world, nil before the first one is installed.
// Callers other than the tick goroutine must treat it as read-only.
func (s *Session) World() *world.World { return s.world.Load() }

// Loading reports whether a load or new world is being built.
func (s *Session) Loading() bool { return s.loading.Load() }

// Busy reports whether a save, load or new world is outstanding.
func (s *Session) Busy() bool { return s.busy.Load() }

// Events delivers completion of background requests.
func (s *Session) Events() <-chan Event { return s.events }

// Install makes w the active world immediately.
func (s *Session) Install(w *world.World) { s.world.Store(w) }

// Submit queues a command for the next tick. Session commands are rejected.
func (s *Session) Submit(cmd input.Command) error {
	if cmd.Action.Session() {
		return fmt.Errorf("game: %s is not a tick command", cmd.Action)
	}
	s.mu.Lock()
	s.queue = append(s.queue, cmd)
	s.mu.Unlock()
	return nil
}

// Save asks the next tick to snapshot the world and write it to path in
// the background.
func (s *Session) Save(path string) error {
	if s.world.Load() == nil {
		return ErrNoWorld
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	s.mu.Lock()
	s.pendingSave = storage.WithExtension(path)
	s.mu.Unlock()
	return nil
}

// Load reads path in the background and swaps the world in when it is
// ready. On failure the current world is kept.
func (s *Session) Load(ctx context.Context, path string) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	s.loading.Store(true)
	path = storage.WithExtension(path)
	go func() {
		w, err := s.loadWorld(ctx, path)
		s.finishBuild(EventLoaded, path, w, err)
	}()
	return nil
}

// NewWorld generates a fresh world for seed in the background.
func (s *Session) NewWorld(ctx context.Context, seed int64) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	s.loading.Store(true)
	go func() {
		w, err := s.buildWorld(ctx, seed)
		s.finishBuild(EventCreated, "", w, err)
	}()
	return nil
}

func (s *Session) loadWorld(ctx context.Context, path string) (*world.World, error) {
	defer profiling.Track("game.loadWorld")()
	snap, err := storage.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return storage.Restore(snap, s.reg, s.worldOpts...)
}

func (s *Session) buildWorld(ctx context.Context, seed int64) (*world.World, error) {
	defer profiling.Track("game.buildWorld")()
	w := world.New(s.reg, seed, s.worldOpts...)

	spawn := SpawnX / world.ChunkWidth
	if err := w.Pregenerate(ctx, spawn-s.pregenRadius, spawn+s.pregenRadius+1); err != nil {
		return nil, err
	}
	p := entity.NewPlayer(mgl64.Vec2{SpawnX, physics.FindGroundLevel(w, SpawnX)})
	w.AddEntity(world.GroupPlayers, p)
	return w, nil
}

func (s *Session) finishBuild(kind EventKind, path string, w *world.World, err error) {
	if err == nil {
		s.world.Store(w)
	}
	s.loading.Store(false)
	s.busy.Store(false)

	if err != nil {
		s.log.Error("world build failed", "kind", kind, "path", path, "error", err)
		s.emit(Event{Kind: EventFailed, Path: path, Err: err})
		return
	}
	s.log.Info("world ready", "kind", kind, "path", path, "seed", w.Seed())
	s.emit(Event{Kind: kind, Path: path, Seed: w.Seed()})
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn("event dropped, nobody is listening", "kind", ev.Kind, "path", ev.Path)
	}
}

// Tick runs one logic step: queued commands are applied and the world is
// updated. Nothing happens while a load or new world is in progress.
func (s *Session) Tick() {
	defer profiling.Track("game.Tick")()

	s.mu.Lock()
	cmds := s.queue
	s.queue = nil
	savePath := s.pendingSave
	s.pendingSave = ""
	s.mu.Unlock()

	w := s.world.Load()
	if savePath != "" {
		s.startSave(w, savePath)
	}
	if w == nil || s.loading.Load() {
		if len(cmds) > 0 {
			s.log.Debug("dropping commands while loading", "count", len(cmds))
		}
		return
	}

	for _, cmd := range cmds {
		if err := apply(w, cmd); err != nil {
			s.log.Debug("command rejected", "action", cmd.Action, "error", err)
		}
	}
	w.Update()
}

// startSave captures w on the tick goroutine and writes it in the
// background.
func (s *Session) startSave(w *world.World, path string) {
	snap := storage.Capture(w)
	s.writers.Add(1)
	go func() {
		defer s.writers.Done()
		s.finishSave(path, snap, s.writeSnapshot(path, snap))
	}()
}

func (s *Session) writeSnapshot(path string, snap *storage.SnapshotV1) error {
	if err := storage.WriteFile(path, snap); err != nil {
		return err
	}
	if s.catalog != nil {
		if err := s.catalog.Record(context.Background(), storage.EntryFor(path, snap)); err != nil {
			s.log.Warn("save not catalogued", "path", path, "error", err)
		}
	}
	return nil
}

// finishSave releases the guard taken by Save and reports the outcome.
func (s *Session) finishSave(path string, snap *storage.SnapshotV1, err error) {
	s.busy.Store(false)
	if err != nil {
		s.log.Error("save failed", "path", path, "error", err)
		s.emit(Event{Kind: EventFailed, Path: path, Err: err})
		return
	}
	s.log.Info("saved world", "path", path, "tick", snap.Tick, "chunks", len(snap.Chunks))
	s.emit(Event{Kind: EventSaved, Path: path, Seed: snap.Seed})
}

// SaveNow captures and writes the world on the calling goroutine. It is
// meant for shutdown, after the tick loop has stopped: a save accepted by
// Save but not yet picked up by a tick is written first, and background
// writes are waited for.
func (s *Session) SaveNow(path string) (string, error) {
	s.mu.Lock()
	pending := s.pendingSave
	s.pendingSave = ""
	s.mu.Unlock()

	w := s.world.Load()
	if pending != "" {
		// Save already holds the guard for this request.
		snap := storage.Capture(w)
		s.finishSave(pending, snap, s.writeSnapshot(pending, snap))
	}
	s.writers.Wait()

	if w == nil {
		return "", ErrNoWorld
	}
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	path = storage.WithExtension(path)
	if err := s.writeSnapshot(path, storage.Capture(w)); err != nil {
		return "", err
	}
	return path, nil
}
