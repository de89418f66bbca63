// Package randutil derives reproducible random streams from int64 seeds.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a PCG-backed *rand.Rand seeded deterministically from seed.
// Equal seeds always produce equal sequences, which the simulator relies on
// for reproducible tallies.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// SeedFromTime folds a timestamp into a seed. Nearby timestamps give
// unrelated seeds.
func SeedFromTime(t time.Time) int64 {
	return int64(mix(uint64(t.UnixNano())) >> 1)
}

// mix is the splitmix64 finaliser.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
