package world

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"terra2d/internal/profiling"
)

// Pregenerate builds terrain for chunks [lo, hi) ahead of play, such as
// the spawn area of a fresh world or the span of a map export. Terrain is
// generated on a worker pool since each chunk only depends on its own
// origin and the seed; light is then swept in index order on the calling
// goroutine because it reads neighbouring chunks.
//
// The world must not be ticked while Pregenerate runs.
func (w *World) Pregenerate(ctx context.Context, lo, hi int) error {
	defer profiling.Track("world.Pregenerate")()

	lo, hi = max(lo, 0), min(hi, w.store.Len())
	if lo >= hi {
		return nil
	}

	fresh := make([]bool, hi-lo)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runtime.NumCPU(), 1))
	for i := lo; i < hi; i++ {
		c, err := w.store.ChunkAt(i)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fresh[i-lo] = c.Generate(w.gen)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pregenerate chunks [%d,%d): %w", lo, hi, err)
	}

	for i := lo; i < hi; i++ {
		if fresh[i-lo] {
			c, _ := w.store.ChunkAt(i)
			w.sweepLight(c)
		}
	}
	// A second pass lets light from the right-hand neighbours settle.
	for i := hi - 1; i >= lo; i-- {
		c, _ := w.store.ChunkAt(i)
		w.sweepLight(c)
	}
	w.log.Debug("pregenerated chunks", "from", lo, "to", hi, "generated", w.store.Generated())
	return nil
}
