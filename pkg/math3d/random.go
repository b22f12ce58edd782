package math3d

import (
	"math"
	"math/rand"
)

// RandRange returns a value drawn uniformly from [lo, hi).
func RandRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// RandVec3 returns a vector whose components are drawn from the matching
// ranges of lo and hi.
func RandVec3(rng *rand.Rand, lo, hi Vec3) Vec3 {
	return Vec3{
		RandRange(rng, lo.X, hi.X),
		RandRange(rng, lo.Y, hi.Y),
		RandRange(rng, lo.Z, hi.Z),
	}
}

// RandUnitVec3 returns a direction uniformly distributed on the unit sphere.
func RandUnitVec3(rng *rand.Rand) Vec3 {
	z := RandRange(rng, -1, 1)
	phi := RandRange(rng, 0, 2*math.Pi)
	r := math.Sqrt(1 - z*z)
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}
