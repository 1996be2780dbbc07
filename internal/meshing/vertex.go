package meshing

import (
	"fmt"
	"math"
	"unsafe"

	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

// Vertex is the GPU vertex layout: integer world position, fixed-point atlas
// UV (32768 == 1.0) and an RGB565 color. Positions must fit in int16, which
// bounds the meshable world to [-32768, 32767] blocks on every axis.
type Vertex struct {
	X, Y, Z int16
	U, V    int16
	Color   uint16
}

// VertexSize is the size of one Vertex in bytes.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// VerticesPerFace is two triangles.
const VerticesPerFace = 6

type templateVertex struct {
	x, y, z int16
	u, v    bool // far edge of the atlas cell
}

// faceCorners lists each face's corners counter-clockwise as seen from
// outside the block: bottom-left, bottom-right, top-right, top-left.
var faceCorners = [world.NumDirections][4][3]int16{
	world.West:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.East:   {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	world.Bottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	world.Top:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	world.North:  {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	world.South:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
}

// faceTemplates holds the six vertices (triangles 0-1-2 and 2-3-0) of a unit
// face for each direction.
var faceTemplates = func() (t [world.NumDirections][VerticesPerFace]templateVertex) {
	cornerUV := [4][2]bool{{false, false}, {true, false}, {true, true}, {false, true}}
	order := [VerticesPerFace]int{0, 1, 2, 2, 3, 0}
	for d := range world.NumDirections {
		for k, c := range order {
			p := faceCorners[d][c]
			t[d][k] = templateVertex{x: p[0], y: p[1], z: p[2], u: cornerUV[c][0], v: cornerUV[c][1]}
		}
	}
	return t
}()

// Vertices views a block's memory as vertices.
func Vertices(b vbo.Block) []Vertex {
	n := b.Size() / VertexSize
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*Vertex)(b.Pointer()), n)
}

// streams are the opaque and transparent outputs of one cluster.
type streams struct {
	opaque, transparent                 vbo.Block
	opaqueVertices, transparentVertices int
}

// emitVertices turns the face buffer into vertex streams. Each stream is
// allocated at exactly six vertices per face; a stream without faces
// allocates nothing.
func (p *clusterPass) emitVertices(alloc Allocator, blocks BlockInfo, iconSize int) streams {
	n := p.cluster.Size()
	baseX := p.chunk.X * n
	baseY := p.cluster.Y * n
	baseZ := p.chunk.Z * n
	for _, b := range [3]int{baseX, baseY, baseZ} {
		if b < math.MinInt16 || b+n > math.MaxInt16 {
			panic(fmt.Sprintf("meshing: cluster %d of chunk (%d,%d) lies outside the int16 vertex range",
				p.cluster.Y, p.chunk.X, p.chunk.Z))
		}
	}

	transparentVertices := p.transparentFaces * VerticesPerFace
	opaqueVertices := len(p.faces)*VerticesPerFace - transparentVertices

	out := streams{
		opaque:              alloc.Allocate(opaqueVertices * VertexSize),
		transparent:         alloc.Allocate(transparentVertices * VertexSize),
		opaqueVertices:      opaqueVertices,
		transparentVertices: transparentVertices,
	}
	opaqueData := Vertices(out.opaque)
	transparentData := Vertices(out.transparent)

	oi, ti := 0, 0
	for _, f := range p.faces {
		var dst []Vertex
		if f.Transparent {
			dst = transparentData[ti : ti+VerticesPerFace]
			ti += VerticesPerFace
		} else {
			dst = opaqueData[oi : oi+VerticesPerFace]
			oi += VerticesPerFace
		}

		u, v := blocks.TextureUV(f.Block, f.Dir)
		color := blocks.Color(f.Block, f.Dir)
		ox := baseX + int(f.X)
		oy := baseY + int(f.Y)
		oz := baseZ + int(f.Z)

		for k, t := range faceTemplates[f.Dir] {
			dst[k] = Vertex{
				X:     int16(ox + int(t.x)),
				Y:     int16(oy + int(t.y)),
				Z:     int16(oz + int(t.z)),
				U:     insetUV(u, t.u, iconSize),
				V:     insetUV(v, t.v, iconSize),
				Color: color,
			}
		}
	}
	if oi != opaqueVertices || ti != transparentVertices {
		panic(fmt.Sprintf("meshing: wrote %d/%d vertices into streams sized %d/%d", oi, ti, opaqueVertices, transparentVertices))
	}
	return out
}

// insetUV moves a corner one unit into the atlas cell so neighboring icons
// never bleed in.
func insetUV(origin int16, far bool, iconSize int) int16 {
	if far {
		return int16(int(origin) + iconSize - 1)
	}
	return origin + 1
}
