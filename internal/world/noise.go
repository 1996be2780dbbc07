package world

import "math"

// Deterministic value noise on an integer lattice. Output is in [0,1].

func smootherstep(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// latticeHash is a SplitMix64 finalizer over the packed lattice coordinates.
func latticeHash(x, y, z, seed int64) float64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v ^= v >> 31
	return float64(v&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func valueNoise3D(x, y, z float64, seed int64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	fx, fy, fz := smootherstep(x-x0), smootherstep(y-y0), smootherstep(z-z0)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	var plane [2]float64
	for dz := range int64(2) {
		var row [2]float64
		for dy := range int64(2) {
			a := latticeHash(ix, iy+dy, iz+dz, seed)
			b := latticeHash(ix+1, iy+dy, iz+dz, seed)
			row[dy] = lerp(a, b, fx)
		}
		plane[dz] = lerp(row[0], row[1], fy)
	}
	return lerp(plane[0], plane[1], fz)
}

// fractalNoise sums octaves of 3D value noise. 2D callers pass y = 0.
func fractalNoise(x, y, z float64, seed int64, octaves int, persistence, lacunarity float64) float64 {
	amplitude, frequency := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for i := range octaves {
		sum += valueNoise3D(x*frequency, y*frequency, z*frequency, seed+int64(i*131)) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
