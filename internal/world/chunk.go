package world

// Chunk dimensions
const (
	ChunkWidth = 8
	MapHeight  = 256
)

// Chunk is a vertical slab of ChunkWidth columns starting at OriginX.
type Chunk struct {
	OriginX   int
	blocks    [ChunkWidth][MapHeight]*Block
	light     [ChunkWidth][MapHeight]float64
	tops      [ChunkWidth]int // highest occupied Y per column, -1 if empty
	generated bool
}

// NewChunk creates an empty, ungenerated chunk.
func NewChunk(originX int) *Chunk {
	c := &Chunk{OriginX: originX}
	for i := range c.tops {
		c.tops[i] = -1
	}
	return c
}

// Generate populates the chunk once. Later calls do nothing and return false.
func (c *Chunk) Generate(gen TerrainGenerator) bool {
	if c.generated {
		return false
	}
	c.blocks = *gen.GenerateChunk(c.OriginX)
	c.recomputeTops()
	c.generated = true
	return true
}

// IsGenerated reports whether terrain has been generated.
func (c *Chunk) IsGenerated() bool {
	return c.generated
}

// Contains reports whether world coordinates x, y fall inside the chunk.
func (c *Chunk) Contains(x, y int) bool {
	return x >= c.OriginX && x < c.OriginX+ChunkWidth && y >= 0 && y < MapHeight
}

// Block returns the block at world coordinates, nil for air or outside.
func (c *Chunk) Block(x, y int) *Block {
	if !c.Contains(x, y) {
		return nil
	}
	return c.blocks[x-c.OriginX][y]
}

// SetBlock stores b at world coordinates; nil clears the cell.
func (c *Chunk) SetBlock(x, y int, b *Block) {
	if !c.Contains(x, y) {
		return
	}
	lx := x - c.OriginX
	c.blocks[lx][y] = b
	switch {
	case b != nil && y > c.tops[lx]:
		c.tops[lx] = y
	case b == nil && y == c.tops[lx]:
		c.tops[lx] = c.scanTop(lx, y-1)
	}
}

// Light returns the light level at world coordinates, 0 outside.
func (c *Chunk) Light(x, y int) float64 {
	if !c.Contains(x, y) {
		return 0
	}
	return c.light[x-c.OriginX][y]
}

func (c *Chunk) setLight(x, y int, v float64) {
	c.light[x-c.OriginX][y] = v
}

// top returns the highest occupied Y of world column x.
func (c *Chunk) top(x int) int {
	return c.tops[x-c.OriginX]
}

func (c *Chunk) scanTop(lx, from int) int {
	for y := from; y >= 0; y-- {
		if c.blocks[lx][y] != nil {
			return y
		}
	}
	return -1
}

func (c *Chunk) recomputeTops() {
	for lx := range ChunkWidth {
		c.tops[lx] = c.scanTop(lx, MapHeight-1)
	}
}

// ForEachBlock calls fn for every occupied cell, column by column.
func (c *Chunk) ForEachBlock(fn func(b *Block)) {
	for lx := range ChunkWidth {
		for y := range MapHeight {
			if b := c.blocks[lx][y]; b != nil {
				fn(b)
			}
		}
	}
}

// Restore replaces the chunk contents wholesale. Used when loading saves.
func (c *Chunk) Restore(blocks *[ChunkWidth][MapHeight]*Block, light *[ChunkWidth][MapHeight]float64, generated bool) {
	c.blocks = *blocks
	c.light = *light
	c.generated = generated
	c.recomputeTops()
}

// update advances every block once. Cells are read fresh each step so
// blocks removed or placed earlier in the pass are respected.
func (c *Chunk) update(w *World) {
	for lx := range ChunkWidth {
		for y := range MapHeight {
			if b := c.blocks[lx][y]; b != nil {
				b.update(w)
			}
		}
	}
}
