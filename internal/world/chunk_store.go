package world

import (
	"fmt"
)

// ChunkStore holds the fixed row of chunk slots that make up a map. Slots
// are allocated up front and never replaced; only their contents change.
type ChunkStore struct {
	chunks []*Chunk
}

// NewChunkStore allocates MapSizeChunks empty chunks.
func NewChunkStore() *ChunkStore {
	cs := &ChunkStore{chunks: make([]*Chunk, MapSizeChunks)}
	for i := range cs.chunks {
		cs.chunks[i] = NewChunk(i * ChunkWidth)
	}
	return cs
}

// Len returns the number of chunk slots.
func (cs *ChunkStore) Len() int {
	return len(cs.chunks)
}

// ChunkAt returns the chunk with index i.
func (cs *ChunkStore) ChunkAt(i int) (*Chunk, error) {
	if i < 0 || i >= len(cs.chunks) {
		return nil, fmt.Errorf("chunk %d: %w", i, ErrChunkOutOfRange)
	}
	return cs.chunks[i], nil
}

// ChunkAtBlock returns the chunk containing world column x.
func (cs *ChunkStore) ChunkAtBlock(x int) (*Chunk, error) {
	i := floorDiv(x, ChunkWidth)
	if i < 0 || i >= len(cs.chunks) {
		return nil, fmt.Errorf("chunk %d for block x=%d: %w", i, x, ErrChunkOutOfRange)
	}
	return cs.chunks[i], nil
}

// Generated counts chunks whose terrain exists.
func (cs *ChunkStore) Generated() int {
	n := 0
	for _, c := range cs.chunks {
		if c.IsGenerated() {
			n++
		}
	}
	return n
}

// All returns the chunk slots in index order. The slice is shared.
func (cs *ChunkStore) All() []*Chunk {
	return cs.chunks
}

// floorDiv performs floor division for integers.
func floorDiv(a, b int) int {
	q := a / b
	r := a % b
	if (r != 0) && ((r < 0) != (b < 0)) {
		q--
	}
	return q
}
