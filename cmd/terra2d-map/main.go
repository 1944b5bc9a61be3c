package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"terra2d/internal/export"
	"terra2d/internal/registry"
	"terra2d/internal/storage"
	"terra2d/internal/world"
)

func main() {
	var (
		savePath  = flag.String("save", "", "save file to render")
		seed      = flag.String("seed", "", "render a fresh world for this seed instead of a save")
		chunks    = flag.Int("chunks", 32, "chunks to generate for a fresh world")
		from      = flag.Int("from", 0, "first chunk to draw")
		to        = flag.Int("to", 0, "chunk to stop before, 0 for the last generated")
		scale     = flag.Int("scale", 2, "pixels per block")
		assetsDir = flag.String("assets", "", "block asset directory, embedded defaults when empty")
		out       = flag.String("out", "map.png", "output PNG")
		noShade   = flag.Bool("no-shade", false, "ignore light levels")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *savePath == "" && *seed == "" {
		fmt.Fprintln(os.Stderr, "one of -save or -seed is required")
		os.Exit(2)
	}

	reg, err := loadRegistry(*assetsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "registry:", err)
		os.Exit(1)
	}

	var w *world.World
	if *savePath != "" {
		snap, err := storage.ReadFile(*savePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read save:", err)
			os.Exit(1)
		}
		if w, err = storage.Restore(snap, reg, world.WithLogger(log)); err != nil {
			fmt.Fprintln(os.Stderr, "restore save:", err)
			os.Exit(1)
		}
	} else {
		w = world.New(reg, world.ParseSeed(*seed), world.WithLogger(log))
		if err := w.Pregenerate(context.Background(), 0, *chunks); err != nil {
			fmt.Fprintln(os.Stderr, "generate:", err)
			os.Exit(1)
		}
	}

	img, err := export.WorldImage(w, export.Options{
		FromChunk: *from,
		ToChunk:   *to,
		Scale:     *scale,
		NoShade:   *noShade,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
	if err := export.WritePNG(*out, img); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	log.Info("map written", "path", *out, "seed", w.Seed(), "size", img.Bounds().Size())
}

func loadRegistry(dir string) (*registry.Registry, error) {
	if dir == "" {
		return registry.Default()
	}
	return registry.LoadDir(dir)
}
