// Package randutil derives the seeded generators used to shuffle decks.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a generator seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// ForDeal returns the generator for deal n of a seeded session. Each deal
// gets an independent stream so any one deal can be replayed without
// replaying the ones before it.
func ForDeal(seed int64, n int) *rand.Rand {
	u := mix(uint64(seed)) ^ mix(uint64(n)*goldenRatio64+1)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns an unpredictable seed for sessions started without one.
func Seed() int64 {
	return rand.Int64()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
