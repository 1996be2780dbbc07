package world

import "math"

// TerrainGenerator fills freshly created chunks with blocks.
type TerrainGenerator interface {
	HeightAt(worldX, worldZ int) int
	PopulateChunk(c *Chunk)
}

// Generator is a noise heightmap with optional caves and a water level.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64

	SeaLevel      int
	CaveThreshold float64 // 0 disables caves
}

// NewGenerator creates a new generator with default settings sized for a
// world of the given height.
func NewGenerator(seed int64, worldHeight int) *Generator {
	return &Generator{
		seed:          seed,
		scale:         1.0 / 48.0,
		baseHeight:    worldHeight / 4,
		amp:           float64(worldHeight) / 4,
		octaves:       4,
		persistence:   0.5,
		lacunarity:    2.0,
		SeaLevel:      worldHeight / 3,
		CaveThreshold: 0.72,
	}
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := fractalNoise(float64(worldX)*g.scale, 0, float64(worldZ)*g.scale, g.seed, g.octaves, g.persistence, g.lacunarity)
	return max(int(math.Floor(float64(g.baseHeight)+n*g.amp)), 0)
}

func (g *Generator) isCave(x, y, z int) bool {
	if g.CaveThreshold <= 0 || y == 0 {
		return false
	}
	const s = 1.0 / 12.0
	return fractalNoise(float64(x)*s, float64(y)*s, float64(z)*s, g.seed^0x5eed, 2, 0.5, 2.0) > g.CaveThreshold
}

// PopulateChunk fills a chunk using the noise heightmap.
func (g *Generator) PopulateChunk(c *Chunk) {
	n := c.ClusterSize()
	top := c.Height() - 1
	for lx := range n {
		for lz := range n {
			wx := c.X*n + lx
			wz := c.Z*n + lz
			height := min(g.HeightAt(wx, wz), top)
			for y := 0; y <= height; y++ {
				switch {
				case y == 0:
					c.SetBlock(lx, y, lz, BlockTypeBedrock)
				case g.isCave(wx, y, wz):
					// leave air
				case y == height && height < g.SeaLevel:
					c.SetBlock(lx, y, lz, BlockTypeSand)
				case y == height:
					c.SetBlock(lx, y, lz, BlockTypeGrass)
				case y > height-4:
					c.SetBlock(lx, y, lz, BlockTypeDirt)
				default:
					c.SetBlock(lx, y, lz, BlockTypeStone)
				}
			}
			for y := height + 1; y <= min(g.SeaLevel, top); y++ {
				c.SetBlock(lx, y, lz, BlockTypeWater)
			}
		}
	}
}

// FlatGenerator produces a flat world of the given surface height.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a generator whose surface is at the given height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

func (g *FlatGenerator) HeightAt(_, _ int) int {
	return g.height
}

func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	n := c.ClusterSize()
	height := min(g.height, c.Height()-1)
	for lx := range n {
		for lz := range n {
			c.SetBlock(lx, 0, lz, BlockTypeBedrock)
			for y := 1; y < height; y++ {
				c.SetBlock(lx, y, lz, BlockTypeDirt)
			}
			if height > 0 {
				c.SetBlock(lx, height, lz, BlockTypeGrass)
			}
		}
	}
}
