package world

import (
	"math"

	"terra2d/internal/registry"
)

// Terrain shape parameters.
const (
	SurfaceScale = 32.0
	SeaLevel     = 24
	oreScale     = 1.0 / 4.0
	companionDY  = 1000.0
)

// TerrainGenerator fills chunk columns. Implementations must be pure
// functions of (world coordinate, seed).
type TerrainGenerator interface {
	SurfaceHeight(worldX int) int
	GenerateChunk(originX int) *[ChunkWidth][MapHeight]*Block
}

type oreRule struct {
	name      string
	offsetX   float64
	threshold float64
	maxY      int
}

// Checked in order; the first rule that fires wins.
var oreRules = []oreRule{
	{name: "coal_ore", offsetX: 0, threshold: 0.55, maxY: MapHeight - 1},
	{name: "iron_ore", offsetX: 4096, threshold: 0.6, maxY: MapHeight - 1},
	{name: "diamond_ore", offsetX: 8192, threshold: 0.6, maxY: 5},
}

// Generator handles terrain generation logic.
type Generator struct {
	seed int64
	reg  *registry.Registry

	grass, dirt, stone, water *registry.BlockDefinition
	ores                      []*registry.BlockDefinition
}

// NewGenerator creates a generator for seed. The registry must contain
// registry.RequiredBlocks, which Load guarantees.
func NewGenerator(reg *registry.Registry, seed int64) *Generator {
	g := &Generator{
		seed:  seed,
		reg:   reg,
		grass: reg.MustGet("grass"),
		dirt:  reg.MustGet("dirt"),
		stone: reg.MustGet("stone"),
		water: reg.MustGet("water"),
	}
	for _, r := range oreRules {
		g.ores = append(g.ores, reg.MustGet(r.name))
	}
	return g
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 { return g.seed }

// SurfaceHeight computes the topmost solid block Y at world column x.
func (g *Generator) SurfaceHeight(worldX int) int {
	n := Noise1D(float64(worldX)/SurfaceScale, g.seed)
	h := int(math.Floor((n + 3) * 10))
	return min(max(h, 0), MapHeight-1)
}

// GenerateChunk builds the block columns of the chunk starting at originX.
func (g *Generator) GenerateChunk(originX int) *[ChunkWidth][MapHeight]*Block {
	var blocks [ChunkWidth][MapHeight]*Block
	for lx := range ChunkWidth {
		worldX := originX + lx
		surface := g.SurfaceHeight(worldX)

		depth := 0
		for y := surface; y >= 0; y-- {
			switch {
			case depth == 0:
				blocks[lx][y] = NewBlock(g.grass, worldX, y)
			case depth < (surface-depth)/20+8:
				blocks[lx][y] = NewBlock(g.dirt, worldX, y)
			default:
				blocks[lx][y] = NewBlock(g.rockAt(worldX, y), worldX, y)
			}
			depth++
		}

		for y := SeaLevel; y >= 0; y-- {
			if blocks[lx][y] == nil {
				blocks[lx][y] = NewBlock(g.water, worldX, y)
			}
		}
	}
	return &blocks
}

// rockAt picks stone or an ore. Each ore samples its field twice, at the
// cell and at a vertically shifted companion point, and needs both above
// threshold.
func (g *Generator) rockAt(x, y int) *registry.BlockDefinition {
	for i, r := range oreRules {
		if y > r.maxY {
			continue
		}
		fx := (float64(x) + r.offsetX) * oreScale
		fy := float64(y) * oreScale
		if Noise2D(fx, fy, g.seed) > r.threshold &&
			Noise2D(fx, fy+companionDY*oreScale, g.seed) > r.threshold {
			return g.ores[i]
		}
	}
	return g.stone
}
