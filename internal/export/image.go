package export

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"terra2d/internal/profiling"
	"terra2d/internal/world"
)

var ErrNothingGenerated = errors.New("export: no generated chunks in range")

var (
	skyColour     = color.RGBA{R: 120, G: 170, B: 230, A: 255}
	voidColour    = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	labelColour   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	minLightShade = 0.2
)

// Options controls WorldImage. Zero values render every generated chunk at
// one pixel per block with shading and a label.
type Options struct {
	// FromChunk and ToChunk bound the chunks drawn, [FromChunk, ToChunk).
	// ToChunk 0 means up to the last generated chunk.
	FromChunk, ToChunk int
	// Scale is the pixel size of one block.
	Scale   int
	NoShade bool
	NoLabel bool
}

// WorldImage draws the world as a map, one colour per block type, top row
// of the world at the top of the image. Ungenerated chunks are left dark.
func WorldImage(w *world.World, opts Options) (*image.RGBA, error) {
	defer profiling.Track("export.WorldImage")()

	lo, hi, err := chunkSpan(w, opts)
	if err != nil {
		return nil, err
	}

	cols := (hi - lo) * world.ChunkWidth
	base := image.NewRGBA(image.Rect(0, 0, cols, world.MapHeight))
	palette := map[string]color.RGBA{}
	for i := lo; i < hi; i++ {
		c, err := w.Store().ChunkAt(i)
		if err != nil {
			return nil, err
		}
		for lx := range world.ChunkWidth {
			x := c.OriginX + lx
			px := (i-lo)*world.ChunkWidth + lx
			for y := range world.MapHeight {
				base.SetRGBA(px, world.MapHeight-1-y, cellColour(c, x, y, palette, !opts.NoShade))
			}
		}
	}

	img := base
	if scale := max(opts.Scale, 1); scale > 1 {
		img = image.NewRGBA(image.Rect(0, 0, cols*scale, world.MapHeight*scale))
		xdraw.NearestNeighbor.Scale(img, img.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	}
	if !opts.NoLabel {
		drawLabel(img, fmt.Sprintf("seed %d  tick %d", w.Seed(), w.Ticks()))
	}
	return img, nil
}

func chunkSpan(w *world.World, opts Options) (lo, hi int, err error) {
	store := w.Store()
	lo, hi = max(opts.FromChunk, 0), opts.ToChunk
	if hi <= 0 {
		hi = 0
		for i, c := range store.All() {
			if c.IsGenerated() {
				hi = i + 1
			}
		}
	}
	hi = min(hi, store.Len())
	for i := lo; i < hi; i++ {
		if c, _ := store.ChunkAt(i); c.IsGenerated() {
			return lo, hi, nil
		}
	}
	return 0, 0, fmt.Errorf("chunks [%d,%d): %w", lo, hi, ErrNothingGenerated)
}

func cellColour(c *world.Chunk, x, y int, palette map[string]color.RGBA, shade bool) color.RGBA {
	if !c.IsGenerated() {
		return voidColour
	}
	col := skyColour
	if b := c.Block(x, y); b != nil {
		var ok bool
		if col, ok = palette[b.Def.Texture]; !ok {
			col = TextureColour(b.Def.Texture)
			palette[b.Def.Texture] = col
		}
	}
	if !shade {
		return col
	}
	f := minLightShade + (1-minLightShade)*c.Light(x, y)
	return color.RGBA{
		R: uint8(float64(col.R) * f),
		G: uint8(float64(col.G) * f),
		B: uint8(float64(col.B) * f),
		A: 255,
	}
}

// TextureColour derives a stable colour from a texture name. Channels are
// kept in the upper half so blocks stay visible against the void.
func TextureColour(texture string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(texture))
	v := h.Sum32()
	return color.RGBA{
		R: 64 + uint8(v>>16)%192,
		G: 64 + uint8(v>>8)%192,
		B: 64 + uint8(v)%192,
		A: 255,
	}
}

func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColour),
		Face: face,
		Dot:  fixed.P(2, face.Metrics().Ascent.Ceil()+1),
	}
	d.DrawString(text)
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
