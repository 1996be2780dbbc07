package world

import "math"

// ChunkCoord addresses a column of clusters in the world grid.
type ChunkCoord struct {
	X, Z int
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns a non-negative remainder for a positive modulus.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// FloorToBlock maps a world-space coordinate to the block containing it.
func FloorToBlock(v float32) int {
	return int(math.Floor(float64(v)))
}
