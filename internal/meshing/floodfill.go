package meshing

import "mini-mc-polygen/internal/world"

// floodFill explores the 6-connected non-opaque region around (x, y, z) and
// returns which pairs of the cluster's outer faces that region connects.
// entries are outer faces the seed is already known to touch
// (DirectionInvalid for none).
//
// Cells are marked visited when enqueued and the marks persist for the whole
// pass, so a region is only ever explored from its first seed. Seeding from a
// visited cell contributes nothing.
//
// While exploring, faces are emitted for every non-air neighbor seen from an
// air cell, and for every opaque neighbor seen from a non-opaque cell.
func (p *clusterPass) floodFill(x, y, z int, entries [3]world.Direction) world.SeeThrough {
	seed := p.index(x, y, z)
	if p.visited[seed] {
		return 0
	}
	p.visited[seed] = true

	var exits [world.NumDirections]bool
	for _, d := range entries {
		if d.Valid() {
			exits[d] = true
		}
	}

	p.queue.Clear()
	p.queue.PushBack(cell{int8(x), int8(y), int8(z)})

	for p.queue.Len() > 0 {
		c := p.queue.PopFront()
		cx, cy, cz := int(c.x), int(c.y), int(c.z)
		current := p.cluster.Block(cx, cy, cz)

		for d := range world.Direction(world.NumDirections) {
			dx, dy, dz := d.Offset()
			nx, ny, nz := cx+dx, cy+dy, cz+dz
			if !p.cluster.InBounds(nx, ny, nz) {
				exits[d] = true
				continue
			}

			neighbor := p.cluster.Block(nx, ny, nz)
			opaque := p.blocks.IsOpaque(neighbor)
			if !opaque {
				if i := p.index(nx, ny, nz); !p.visited[i] {
					p.visited[i] = true
					p.queue.PushBack(cell{int8(nx), int8(ny), int8(nz)})
				}
			}
			if (current == world.BlockTypeAir || opaque) && neighbor != world.BlockTypeAir {
				p.addFace(nx, ny, nz, d.Opposite(), neighbor, !opaque)
			}
		}
	}

	return exitMask(exits)
}

// exitMask connects every pair of distinct reached faces.
func exitMask(exits [world.NumDirections]bool) world.SeeThrough {
	var vis world.SeeThrough
	for i := range world.Direction(world.NumDirections) {
		if !exits[i] {
			continue
		}
		for j := i + 1; j < world.NumDirections; j++ {
			if exits[j] {
				vis.Set(i, j)
			}
		}
	}
	return vis
}
