package world

import (
	"terra2d/internal/registry"
)

// Kind tags the block variant.
type Kind uint8

const (
	KindStatic Kind = iota
	KindFluid
)

// SourceDirection records which neighbour a fluid block spread from.
type SourceDirection uint8

const (
	SourceLeft SourceDirection = iota
	SourceRight
	SourceUp
	SourceDown
	SourceOrigin
)

func (s SourceDirection) String() string {
	switch s {
	case SourceLeft:
		return "left"
	case SourceRight:
		return "right"
	case SourceUp:
		return "up"
	case SourceDown:
		return "down"
	case SourceOrigin:
		return "origin"
	default:
		return "unknown"
	}
}

// Block is a single occupied grid cell. An empty cell holds no Block.
type Block struct {
	X, Y int
	Def  *registry.BlockDefinition
	Kind Kind

	// Source is only meaningful for KindFluid.
	Source SourceDirection

	highlighted bool
}

// NewBlock creates a block of the given type at world coordinates x, y.
// Fluids start as an origin source.
func NewBlock(def *registry.BlockDefinition, x, y int) *Block {
	if def.IsFluid {
		return newFluid(def, x, y, SourceOrigin)
	}
	return &Block{X: x, Y: y, Def: def, Kind: KindStatic}
}

func newFluid(def *registry.BlockDefinition, x, y int, src SourceDirection) *Block {
	return &Block{X: x, Y: y, Def: def, Kind: KindFluid, Source: src}
}

// Type returns the registry name of the block.
func (b *Block) Type() string { return b.Def.Name }

func (b *Block) IsFluid() bool { return b.Kind == KindFluid }

// IsSolid reports whether entities collide with the block.
func (b *Block) IsSolid() bool { return b.Def.IsSolid() }

func (b *Block) IsLightSource() bool { return b.Def.IsLightSource }

// Attenuation is the light lost when light passes through this block.
func (b *Block) Attenuation() float64 { return b.Def.Attenuation }

// Highlighted reports whether the pointer hovered the block this tick.
func (b *Block) Highlighted() bool { return b.highlighted }

// update runs the variant specific per-tick behaviour.
func (b *Block) update(w *World) {
	b.highlighted = false
	if b.Kind == KindFluid {
		w.spreadFluid(b)
	}
}
