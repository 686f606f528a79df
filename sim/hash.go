package sim

// Deterministic per-element sampling. Init and respawn passes draw values
// from an integer hash of (element index, field stream, pass number) rather
// than a stateful RNG, so the same index always produces the same sample
// within a pass regardless of worker count or execution order.

// Field streams decorrelate the samples drawn for one element.
const (
	streamSpawnX uint32 = iota + 1
	streamSpawnY
	streamSpawnZ
	streamVelX
	streamVelY
	streamVelZ
	streamLife
)

// hash32 is the murmur3 finalizer: full avalanche, same input same output.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

// sampleUnit maps (index, stream, pass) to a value in [0, 1).
func sampleUnit(index, stream, pass uint32) float32 {
	h := hash32(hash32(index*0x9e3779b9+stream) + pass*0x7f4a7c15)
	// Top 24 bits; exactly representable in float32.
	return float32(h>>8) * (1.0 / (1 << 24))
}

// sampleRange maps (index, stream, pass) to a value in [lo, hi].
func sampleRange(index, stream, pass uint32, lo, hi float32) float32 {
	return lo + (hi-lo)*sampleUnit(index, stream, pass)
}
