package world

// spreadFluid runs one step of the waterfall rule for b. Fluids only fall;
// there is no sideways flow.
func (w *World) spreadFluid(b *Block) {
	if w.ticks%SpreadTime != 0 {
		return
	}
	c, err := w.store.ChunkAtBlock(b.X)
	if err != nil {
		w.log.Warn("fluid outside map", "x", b.X, "y", b.Y, "error", err)
		return
	}

	if b.Y > 0 && c.Block(b.X, b.Y-1) == nil {
		w.put(c, b.X, b.Y-1, newFluid(b.Def, b.X, b.Y-1, SourceUp))
	}

	if b.Source == SourceUp {
		above := c.Block(b.X, b.Y+1)
		if above == nil || above.Type() != b.Type() {
			w.put(c, b.X, b.Y, nil)
		}
	}
}
