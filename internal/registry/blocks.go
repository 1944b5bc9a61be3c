package registry

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Names of the source documents inside an asset directory.
const (
	PropertiesFile    = "blockproperties.json"
	TranslucencyFile  = "blocktranslucencies.json"
	propertiesSchema  = "blockproperties.schema.json"
	translucentSchema = "blocktranslucencies.schema.json"
)

// AirName is the registry entry that stands for an empty cell.
const AirName = "null"

// AirGroup is the translucency group used for empty cells.
const AirGroup = "air"

// RequiredBlocks are referenced by terrain generation and must be present.
var RequiredBlocks = []string{
	AirName, "grass", "dirt", "stone", "coal_ore", "iron_ore", "diamond_ore", "water",
}

var ErrMissingBlock = errors.New("registry: missing block")

//go:embed assets/*.json
var defaultAssets embed.FS

// BlockDefinition defines the properties of a block type
type BlockDefinition struct {
	Name              string
	Texture           string
	TextureIndex      int
	IsFluid           bool
	IsLightSource     bool
	TranslucencyGroup string
	Attenuation       float64
}

// IsSolid reports whether entities collide with the block.
func (d *BlockDefinition) IsSolid() bool {
	return !d.IsFluid && d.Name != AirName
}

type propertiesDoc struct {
	Texture           string `json:"texture"`
	IsFluid           bool   `json:"isFluid"`
	IsLightSource     bool   `json:"isLightSource"`
	TranslucencyGroup string `json:"translucencyGroup"`
}

// Registry is the immutable table of block types. It is safe for concurrent
// reads once Load has returned.
type Registry struct {
	blocks         map[string]*BlockDefinition
	translucency   map[string]float64
	placeable      []string
	textureNames   []string
	textureMap     map[string]int
	digest         string
	airAttenuation float64
}

// Default loads the registry from the embedded asset set.
func Default() (*Registry, error) {
	sub, err := fs.Sub(defaultAssets, "assets")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir loads the registry from a directory on disk. Schemas are always
// taken from the embedded set so an override cannot loosen validation.
func LoadDir(dir string) (*Registry, error) {
	props, err := os.ReadFile(filepath.Join(dir, PropertiesFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", PropertiesFile, err)
	}
	trans, err := os.ReadFile(filepath.Join(dir, TranslucencyFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TranslucencyFile, err)
	}
	return Load(props, trans)
}

// LoadFS loads the registry from the two documents found in fsys.
func LoadFS(fsys fs.FS) (*Registry, error) {
	props, err := fs.ReadFile(fsys, PropertiesFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", PropertiesFile, err)
	}
	trans, err := fs.ReadFile(fsys, TranslucencyFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TranslucencyFile, err)
	}
	return Load(props, trans)
}

// Load validates and decodes the block property and translucency documents.
// Any inconsistency is returned as an error; callers treat it as fatal.
func Load(propsJSON, translucencyJSON []byte) (*Registry, error) {
	if err := validate(translucentSchema, translucencyJSON); err != nil {
		return nil, fmt.Errorf("%s: %w", TranslucencyFile, err)
	}
	if err := validate(propertiesSchema, propsJSON); err != nil {
		return nil, fmt.Errorf("%s: %w", PropertiesFile, err)
	}

	translucency := make(map[string]float64)
	if err := json.Unmarshal(translucencyJSON, &translucency); err != nil {
		return nil, fmt.Errorf("%s: %w", TranslucencyFile, err)
	}
	var props map[string]propertiesDoc
	if err := json.Unmarshal(propsJSON, &props); err != nil {
		return nil, fmt.Errorf("%s: %w", PropertiesFile, err)
	}

	r := &Registry{
		blocks:       make(map[string]*BlockDefinition, len(props)),
		translucency: translucency,
		textureMap:   make(map[string]int),
	}

	names := maps.Keys(props)
	slices.Sort(names)
	for _, name := range names {
		p := props[name]
		att, ok := translucency[p.TranslucencyGroup]
		if !ok {
			return nil, fmt.Errorf("block %q: unknown translucency group %q", name, p.TranslucencyGroup)
		}
		def := &BlockDefinition{
			Name:              name,
			Texture:           p.Texture,
			TextureIndex:      r.registerTexture(p.Texture),
			IsFluid:           p.IsFluid,
			IsLightSource:     p.IsLightSource,
			TranslucencyGroup: p.TranslucencyGroup,
			Attenuation:       att,
		}
		r.blocks[name] = def
		if name != AirName {
			r.placeable = append(r.placeable, name)
		}
	}

	for _, name := range RequiredBlocks {
		if _, ok := r.blocks[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingBlock, name)
		}
	}
	r.airAttenuation = translucency[AirGroup]

	sum := sha256.New()
	sum.Write(propsJSON)
	sum.Write(translucencyJSON)
	r.digest = hex.EncodeToString(sum.Sum(nil))

	return r, nil
}

func (r *Registry) registerTexture(name string) int {
	if idx, ok := r.textureMap[name]; ok {
		return idx
	}
	idx := len(r.textureNames)
	r.textureMap[name] = idx
	r.textureNames = append(r.textureNames, name)
	return idx
}

// Get looks up a block definition by name.
func (r *Registry) Get(name string) (*BlockDefinition, bool) {
	def, ok := r.blocks[name]
	return def, ok
}

// MustGet looks up a block definition and panics if it is absent. Only use it
// for names validated at load time (see RequiredBlocks).
func (r *Registry) MustGet(name string) *BlockDefinition {
	def, ok := r.blocks[name]
	if !ok {
		panic(fmt.Sprintf("%v: %q", ErrMissingBlock, name))
	}
	return def
}

// Lookup is Get with an error for unknown names.
func (r *Registry) Lookup(name string) (*BlockDefinition, error) {
	def, ok := r.blocks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingBlock, name)
	}
	return def, nil
}

// AirAttenuation is the light loss through an empty cell.
func (r *Registry) AirAttenuation() float64 {
	return r.airAttenuation
}

// Placeable returns block names the cursor cycles through, in stable order.
func (r *Registry) Placeable() []string {
	out := make([]string, len(r.placeable))
	copy(out, r.placeable)
	return out
}

// Textures returns texture names indexed by BlockDefinition.TextureIndex.
func (r *Registry) Textures() []string {
	out := make([]string, len(r.textureNames))
	copy(out, r.textureNames)
	return out
}

// Digest identifies the registry contents. Saves record it so a load against
// different assets can be detected.
func (r *Registry) Digest() string {
	return r.digest
}

// Len returns the number of registered block types, including air.
func (r *Registry) Len() int {
	return len(r.blocks)
}

func readSchema(name string) (*bytes.Reader, error) {
	b, err := defaultAssets.ReadFile("assets/" + name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
