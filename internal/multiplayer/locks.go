package multiplayer

import "sync"

const lockStripes = 64

// stripedLock serializes work per key without a global lock. Keys that hash
// to the same stripe share a mutex.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe of key and returns its unlock function.
func (l *stripedLock) lock(key int64) func() {
	mu := &l.stripes[shardIndex(key, lockStripes)]
	mu.Lock()
	return mu.Unlock
}

// shardIndex spreads ids over n buckets. Sequential ids land on different
// buckets.
func shardIndex(key int64, n int) int {
	x := uint64(key)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return int(x % uint64(n))
}
