package registry

import (
	"fmt"

	"mini-mc-polygen/internal/world"
)

// FixedOne is 1.0 in the 16-bit fixed-point texture coordinate space.
const FixedOne = 32768

// DefaultIconsPerRow is the atlas width (and height) in icons.
const DefaultIconsPerRow = 8

// Icon addresses a cell of the texture atlas.
type Icon struct {
	Col, Row int
}

// BlockDefinition defines the rendering properties of a block type
type BlockDefinition struct {
	ID          world.BlockType
	Name        string
	Opaque      bool
	Transparent bool // drawn in the transparent pass
	Top         Icon
	Side        Icon
	Bottom      Icon
	Tint        uint32 // 0xRRGGBB, multiplied into every face
	TintTopOnly bool
}

// Registry maps block types to their definitions. It must be fully populated
// before mesh workers start; lookups are then read-only and lock-free.
type Registry struct {
	defs        []*BlockDefinition
	iconsPerRow int
}

// New creates an empty registry with air pre-registered.
func New(iconsPerRow int) *Registry {
	if iconsPerRow <= 0 {
		iconsPerRow = DefaultIconsPerRow
	}
	r := &Registry{iconsPerRow: iconsPerRow}
	r.Register(&BlockDefinition{ID: world.BlockTypeAir, Name: "air", Transparent: true})
	return r
}

// IconsPerRow returns the atlas width in icons.
func (r *Registry) IconsPerRow() int {
	return r.iconsPerRow
}

// IconSize returns the width of one atlas cell in fixed-point units.
func (r *Registry) IconSize() int {
	return FixedOne / r.iconsPerRow
}

// Register adds or replaces a definition.
func (r *Registry) Register(def *BlockDefinition) {
	if def.Tint == 0 {
		def.Tint = 0xFFFFFF
	}
	for int(def.ID) >= len(r.defs) {
		r.defs = append(r.defs, nil)
	}
	r.defs[def.ID] = def
}

// Definition returns the definition for b, falling back to air for unknown blocks.
func (r *Registry) Definition(b world.BlockType) *BlockDefinition {
	if int(b) < len(r.defs) {
		if def := r.defs[b]; def != nil {
			return def
		}
	}
	return r.defs[world.BlockTypeAir]
}

// IsOpaque reports whether b hides everything behind it.
func (r *Registry) IsOpaque(b world.BlockType) bool {
	return r.Definition(b).Opaque
}

// IsTransparent reports whether b is drawn in the transparent pass.
func (r *Registry) IsTransparent(b world.BlockType) bool {
	return r.Definition(b).Transparent
}

func (def *BlockDefinition) icon(dir world.Direction) Icon {
	switch dir {
	case world.Top:
		return def.Top
	case world.Bottom:
		return def.Bottom
	default:
		return def.Side
	}
}

// TextureUV returns the fixed-point top-left corner of the atlas cell used by
// face dir of block b.
func (r *Registry) TextureUV(b world.BlockType, dir world.Direction) (u, v int16) {
	ic := r.Definition(b).icon(dir)
	size := r.IconSize()
	return int16(ic.Col * size), int16(ic.Row * size)
}

// faceShade darkens side and bottom faces so cubes read without lighting.
var faceShade = [world.NumDirections]float32{
	world.West:   0.6,
	world.East:   0.6,
	world.Bottom: 0.5,
	world.Top:    1.0,
	world.North:  0.8,
	world.South:  0.8,
}

// Color returns the packed RGB565 vertex color for face dir of block b.
func (r *Registry) Color(b world.BlockType, dir world.Direction) uint16 {
	def := r.Definition(b)
	tint := def.Tint
	if def.TintTopOnly && dir != world.Top {
		tint = 0xFFFFFF
	}
	shade := float32(1)
	if dir.Valid() {
		shade = faceShade[dir]
	}
	red := float32(tint>>16&0xFF) * shade
	green := float32(tint>>8&0xFF) * shade
	blue := float32(tint&0xFF) * shade
	return PackRGB565(uint8(red), uint8(green), uint8(blue))
}

// PackRGB565 packs an 8-bit-per-channel color into 16 bits.
func PackRGB565(red, green, blue uint8) uint16 {
	return uint16(red>>3)<<11 | uint16(green>>2)<<5 | uint16(blue>>3)
}

// Default returns a registry with the built-in block set.
func Default() *Registry {
	r := New(DefaultIconsPerRow)
	for _, def := range defaultBlocks() {
		r.Register(def)
	}
	return r
}

func uniform(col, row int) (Icon, Icon, Icon) {
	ic := Icon{Col: col, Row: row}
	return ic, ic, ic
}

func defaultBlocks() []*BlockDefinition {
	solid := func(id world.BlockType, col, row int) *BlockDefinition {
		top, side, bottom := uniform(col, row)
		return &BlockDefinition{ID: id, Name: id.String(), Opaque: true, Top: top, Side: side, Bottom: bottom}
	}

	grass := solid(world.BlockTypeGrass, 3, 0)
	grass.Top = Icon{Col: 0, Row: 0}
	grass.Bottom = Icon{Col: 2, Row: 0}
	grass.Tint = 0x7DFF5C
	grass.TintTopOnly = true

	glass := solid(world.BlockTypeGlass, 1, 3)
	glass.Opaque = false

	leaves := solid(world.BlockTypeLeaves, 4, 3)
	leaves.Opaque = false
	leaves.Tint = 0x48B518

	water := solid(world.BlockTypeWater, 5, 4)
	water.Opaque = false
	water.Transparent = true
	water.Tint = 0x3F76E4

	return []*BlockDefinition{
		solid(world.BlockTypeStone, 1, 0),
		solid(world.BlockTypeDirt, 2, 0),
		grass,
		solid(world.BlockTypeCobblestone, 0, 1),
		solid(world.BlockTypeBedrock, 1, 1),
		solid(world.BlockTypePlanksOak, 4, 0),
		solid(world.BlockTypeSand, 2, 1),
		glass,
		leaves,
		water,
	}
}

// String implements fmt.Stringer for debugging output.
func (def *BlockDefinition) String() string {
	return fmt.Sprintf("%s(%d) opaque=%t transparent=%t", def.Name, def.ID, def.Opaque, def.Transparent)
}
