package meshing

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mini-mc-polygen/internal/registry"
	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

func TestVertexLayout(t *testing.T) {
	if VertexSize != 12 {
		t.Fatalf("vertex size: got %d, want 12", VertexSize)
	}
}

func TestTemplatesFaceOutward(t *testing.T) {
	for d := range world.Direction(world.NumDirections) {
		tpl := faceTemplates[d]
		for tri := range 2 {
			var p [3]mgl32.Vec3
			for k := range 3 {
				v := tpl[tri*3+k]
				p[k] = mgl32.Vec3{float32(v.x), float32(v.y), float32(v.z)}
			}
			n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
			if n.Dot(d.Normal()) <= 0 {
				t.Fatalf("%v triangle %d winds inward: normal %v", d, tri, n)
			}
		}
		// every vertex lies on the face's plane
		dx, dy, dz := d.Offset()
		for _, v := range tpl {
			c := [3]int{int(v.x), int(v.y), int(v.z)}
			o := [3]int{dx, dy, dz}
			for axis := range 3 {
				want := -1
				switch o[axis] {
				case 1:
					want = 1
				case -1:
					want = 0
				}
				if want >= 0 && c[axis] != want {
					t.Fatalf("%v vertex %v off plane", d, c)
				}
			}
		}
	}
}

func TestEmitVerticesOffsetsAndUV(t *testing.T) {
	const n = 4
	ch := world.NewChunk(-2, 3, n, 2)
	ch.SetBlock(1, n+2, 2, world.BlockTypeGrass)
	src := newStubWorld(world.BlockTypeStone, ch)

	reg := registry.Default()
	p, _ := runPass(src, ch, 1, nil)
	arena := vbo.NewArena(4)
	out := p.emitVertices(arena, reg, reg.IconSize())
	if out.opaqueVertices != 36 {
		t.Fatalf("vertices: got %d, want 36", out.opaqueVertices)
	}

	iconSize := int16(reg.IconSize())
	baseX, baseY, baseZ := int16(-2*n+1), int16(n+2), int16(3*n+2)
	verts := Vertices(out.opaque)
	for i, f := range p.faces {
		u, v := reg.TextureUV(f.Block, f.Dir)
		color := reg.Color(f.Block, f.Dir)
		for _, vx := range verts[i*VerticesPerFace : (i+1)*VerticesPerFace] {
			if vx.X < baseX || vx.X > baseX+1 || vx.Y < baseY || vx.Y > baseY+1 || vx.Z < baseZ || vx.Z > baseZ+1 {
				t.Fatalf("%v vertex (%d,%d,%d) outside the block", f.Dir, vx.X, vx.Y, vx.Z)
			}
			if vx.U != u+1 && vx.U != u+iconSize-1 {
				t.Fatalf("%v vertex u %d not inset in cell at %d", f.Dir, vx.U, u)
			}
			if vx.V != v+1 && vx.V != v+iconSize-1 {
				t.Fatalf("%v vertex v %d not inset in cell at %d", f.Dir, vx.V, v)
			}
			if vx.Color != color {
				t.Fatalf("%v vertex color %#x, want %#x", f.Dir, vx.Color, color)
			}
		}
	}
}

func TestEmitVerticesRejectsOutOfRangeCluster(t *testing.T) {
	const n = 16
	ch := world.NewChunk(2048, 0, n, 1)
	ch.SetBlock(1, 1, 1, world.BlockTypeStone)
	p, _ := runPass(newStubWorld(world.BlockTypeStone, ch), ch, 0, nil)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a chunk beyond the int16 range")
		}
	}()
	p.emitVertices(vbo.NewArena(4), registry.Default(), 4096)
}

func TestEmitVerticesAtRangeEdge(t *testing.T) {
	const n = 16
	ch := world.NewChunk(-2048, 2046, n, 1)
	ch.SetBlock(0, 1, 15, world.BlockTypeStone)
	p, _ := runPass(newStubWorld(world.BlockTypeAir, ch), ch, 0, nil)

	out := p.emitVertices(vbo.NewArena(4), registry.Default(), 4096)
	for _, v := range Vertices(out.opaque) {
		if v.X > -2047*n || v.Z < 2046*n {
			t.Fatalf("vertex (%d,%d,%d) wrapped", v.X, v.Y, v.Z)
		}
	}
}
