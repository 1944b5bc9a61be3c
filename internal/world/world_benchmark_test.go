package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Benchmark a tick with the default viewport over generated terrain
func BenchmarkWorldUpdate(b *testing.B) {
	w := New(testRegistry(b), 1000000, WithLogger(quietLogger()))
	w.AddEntity(GroupPlayers, &stubEntity{pos: mgl64.Vec2{25, 30}})

	// Warm-up populate once
	w.Update()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Update()
	}
}

func BenchmarkGenerateChunk(b *testing.B) {
	g := NewGenerator(testRegistry(b), 1000000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.GenerateChunk((i % MapSizeChunks) * ChunkWidth)
	}
}
