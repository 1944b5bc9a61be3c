package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"terra2d/internal/config"
	"terra2d/internal/game"
	"terra2d/internal/input"
	"terra2d/internal/registry"
	"terra2d/internal/storage"
	"terra2d/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "terra2d.yaml", "configuration file")
		seed       = flag.String("seed", "", "world seed, digits or any text (overrides config)")
		assetsDir  = flag.String("assets", "", "block asset directory (overrides config)")
		source     = flag.String("assets-source", "", "go-getter URL fetched into the asset directory")
		savesDir   = flag.String("saves", "", "save directory (overrides config)")
		catalog    = flag.String("catalog", "", "save catalog database (overrides config)")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error (overrides config)")
		ups        = flag.Int("ups", 0, "logic updates per second (overrides config)")
		loadPath   = flag.String("load", "", "save file to resume instead of generating a world")
		saveOnExit = flag.Bool("save-on-exit", true, "write an autosave when the program stops")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			o.Seed = seed
		case "assets":
			o.AssetsDir = assetsDir
		case "assets-source":
			o.Source = source
		case "saves":
			o.SavesDir = savesDir
		case "catalog":
			o.Catalog = catalog
		case "log-level":
			o.LogLevel = logLevel
		case "ups":
			o.UPS = ups
		}
	})
	if err := cfg.Merge(o); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, log, *loadPath, *saveOnExit); err != nil {
		log.Error("terra2d stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, log *slog.Logger, loadPath string, saveOnExit bool) error {
	reg, err := loadRegistry(ctx, cfg.Assets, log)
	if err != nil {
		return err
	}
	log.Info("block registry loaded", "blocks", reg.Len(), "digest", reg.Digest())

	opts := []game.Option{
		game.WithPregenerateRadius(cfg.World.PregenerateRadius),
		game.WithWorldOptions(world.WithViewport(cfg.World.ViewportWidth, cfg.World.ViewportHeight)),
	}
	if cfg.Saves.Catalog != "" {
		cat, err := storage.OpenCatalog(cfg.Saves.Catalog)
		if err != nil {
			log.Warn("save catalog unavailable", "path", cfg.Saves.Catalog, "error", err)
		} else {
			defer cat.Close()
			opts = append(opts, game.WithCatalog(cat))
		}
	}
	session := game.NewSession(reg, log, opts...)

	if loadPath != "" {
		err = session.Load(ctx, loadPath)
	} else {
		err = session.NewWorld(ctx, world.ParseSeed(cfg.World.Seed))
	}
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return nil
	case ev := <-session.Events():
		if ev.Kind == game.EventFailed {
			return fmt.Errorf("starting world: %w", ev.Err)
		}
	}

	go logEvents(ctx, session, log)
	go readCommands(ctx, stop, os.Stdin, session, cfg.Saves.Dir, log)

	loop := &game.Loop{
		UPS:          cfg.Simulation.UPS,
		MaxCatchUp:   cfg.Simulation.MaxCatchUp,
		Update:       session.Tick,
		Log:          log,
		ProfileEvery: cfg.Simulation.ProfileEvery,
	}
	log.Info("simulation running", "seed", session.World().Seed(), "ups", loop.UPS)
	if err := loop.Run(ctx); err != nil {
		return err
	}
	log.Info("simulation stopped", "updates", loop.Updates())

	if saveOnExit {
		path, err := session.SaveNow(savePath(cfg.Saves.Dir, "autosave"))
		if err != nil {
			return fmt.Errorf("autosave: %w", err)
		}
		log.Info("autosaved", "path", path)
	}
	return nil
}

func loadRegistry(ctx context.Context, assets config.AssetSettings, log *slog.Logger) (*registry.Registry, error) {
	if assets.Source != "" {
		if err := registry.Fetch(ctx, assets.Source, assets.Dir, log); err != nil {
			return nil, err
		}
	}
	if assets.Dir == "" {
		return registry.Default()
	}
	return registry.LoadDir(assets.Dir)
}

// readCommands feeds stdin lines to the session until EOF or ctx ends.
func readCommands(ctx context.Context, stop context.CancelFunc, r io.Reader, s *game.Session, savesDir string, log *slog.Logger) {
	im := input.NewInputManager()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		cmd, err := im.Parse(sc.Text())
		if errors.Is(err, input.ErrEmptyCommand) {
			continue
		}
		if err != nil {
			log.Warn("bad command", "error", err)
			continue
		}

		switch cmd.Action {
		case input.ActionQuit:
			stop()
			return
		case input.ActionSave:
			err = s.Save(savePath(savesDir, cmd.Arg))
		case input.ActionLoad:
			err = s.Load(ctx, savePath(savesDir, cmd.Arg))
		case input.ActionNewWorld:
			err = s.NewWorld(ctx, world.ParseSeed(cmd.Arg))
		default:
			err = s.Submit(cmd)
		}
		if err != nil {
			log.Warn("command failed", "action", cmd.Action, "error", err)
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("reading commands", "error", err)
	}
}

func logEvents(ctx context.Context, s *game.Session, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.Events():
			if ev.Err != nil {
				log.Error("session request failed", "path", ev.Path, "error", ev.Err)
				continue
			}
			log.Info("session request done", "kind", ev.Kind, "path", ev.Path, "seed", ev.Seed)
		}
	}
}

// savePath places bare names in the save directory.
func savePath(dir, name string) string {
	if dir == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(dir, name)
}
