package world

import "github.com/go-gl/mathgl/mgl32"

// Direction is one of the six axis-aligned faces of a block or cluster.
type Direction uint8

const (
	West   Direction = iota // -X
	East                    // +X
	Bottom                  // -Y
	Top                     // +Y
	North                   // -Z
	South                   // +Z

	DirectionInvalid Direction = 0xFF
)

// NumDirections is the number of valid directions.
const NumDirections = 6

var directionOffsets = [NumDirections][3]int{
	West:   {-1, 0, 0},
	East:   {1, 0, 0},
	Bottom: {0, -1, 0},
	Top:    {0, 1, 0},
	North:  {0, 0, -1},
	South:  {0, 0, 1},
}

var directionNames = [NumDirections]string{"west", "east", "bottom", "top", "north", "south"}

// Offset returns the unit step toward the neighbor on this side.
func (d Direction) Offset() (dx, dy, dz int) {
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

// Normal returns the outward normal of a face pointing in this direction.
func (d Direction) Normal() mgl32.Vec3 {
	o := directionOffsets[d]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// Opposite flips the sign of the axis. Pairs are laid out as (-,+) so this is a bit flip.
func (d Direction) Opposite() Direction {
	if d == DirectionInvalid {
		return DirectionInvalid
	}
	return d ^ 1
}

func (d Direction) Valid() bool {
	return d < NumDirections
}

func (d Direction) String() string {
	if d.Valid() {
		return directionNames[d]
	}
	return "invalid"
}

// SeeThrough records which pairs of a cluster's outer faces are connected
// through non-opaque space. Only the 15 unordered pairs are stored, so the
// relation is symmetric by construction.
type SeeThrough uint16

// SeeThroughAll has every pair of distinct faces connected.
const SeeThroughAll SeeThrough = 1<<15 - 1

var seeThroughBits = func() (t [NumDirections][NumDirections]SeeThrough) {
	bit := 0
	for a := range NumDirections {
		for b := a + 1; b < NumDirections; b++ {
			t[a][b] = 1 << bit
			t[b][a] = 1 << bit
			bit++
		}
	}
	return t
}()

// SeeThroughPair returns the bit for the pair (a, b). It is zero when a == b
// or either direction is invalid.
func SeeThroughPair(a, b Direction) SeeThrough {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	return seeThroughBits[a][b]
}

// Has reports whether faces a and b can see each other.
func (s SeeThrough) Has(a, b Direction) bool {
	bit := SeeThroughPair(a, b)
	return bit != 0 && s&bit != 0
}

// Set marks faces a and b as mutually visible.
func (s *SeeThrough) Set(a, b Direction) {
	*s |= SeeThroughPair(a, b)
}
