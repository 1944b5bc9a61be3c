package storage

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	Version   = 1
	Extension = ".gam"
)

var ErrCorruptSave = errors.New("storage: corrupt save")

// Header is written as a JSON line ahead of the gob body so tools can
// identify a save without decoding the world.
type Header struct {
	Version int       `json:"version"`
	Seed    int64     `json:"seed"`
	Tick    uint64    `json:"tick"`
	Digest  string    `json:"registry_digest"`
	SavedAt time.Time `json:"saved_at"`
}

// SnapshotV1 is a detached copy of a world. Nothing in it aliases live
// simulation state.
type SnapshotV1 struct {
	Header Header

	Seed         int64
	Tick         uint64
	PlaceIndex   int
	ShowHitboxes bool
	SkyFloat     int
	SkyFrame     int

	Chunks   []ChunkV1
	Entities []EntityV1
}

// ChunkV1 holds one generated chunk. Cells are column-major: index
// lx*MapHeight + y. An empty block name is air.
type ChunkV1 struct {
	OriginX int
	Blocks  []string
	Sources []uint8
	Light   []float64
}

type EntityV1 struct {
	ID     string
	Kind   string
	Groups []string

	Pos, Prev, Vel, Size [2]float64
	Facing               uint8
	OnGround             bool

	Flying           bool
	WalkingTime      int
	AnimationCounter int
}

// WithExtension appends the save extension when path lacks it.
func WithExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return path
	}
	return path + Extension
}

// Encode writes snap as a zstd stream.
func Encode(w io.Writer, snap *SnapshotV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("header encode: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a snapshot written by Encode. Any malformed input yields an
// error wrapping ErrCorruptSave.
func Decode(r io.Reader) (*SnapshotV1, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptSave, err)
	}
	var hdr Header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorruptSave, err)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSave, hdr.Version)
	}

	var snap SnapshotV1
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: gob decode: %v", ErrCorruptSave, err)
	}
	if snap.Header.Seed != hdr.Seed || snap.Header.Tick != hdr.Tick {
		return nil, fmt.Errorf("%w: header mismatch", ErrCorruptSave)
	}
	return &snap, nil
}

// WriteFile saves snap to path via a temp file in the same directory, so a
// failed write never clobbers an existing save.
func WriteFile(path string, snap *SnapshotV1) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile loads a snapshot from path.
func ReadFile(path string) (*SnapshotV1, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ReadHeader returns only the JSON header line of a save.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	defer dec.Close()
	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("%w: header: %v", ErrCorruptSave, err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("%w: header: %v", ErrCorruptSave, err)
	}
	return hdr, nil
}
