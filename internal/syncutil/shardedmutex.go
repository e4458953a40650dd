// Package syncutil provides keyed locking primitives used to serialize
// per-player read-modify-write sequences without a single global lock.
package syncutil

import (
	"hash/fnv"
	"sync"
)

const shardCount = 128

// ShardedMutex is a fixed pool of mutexes keyed by string. Operations on the
// same key are serialized; operations on different keys proceed in parallel
// unless they hash to the same shard. Memory is bounded regardless of how
// many distinct keys are seen.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock function.
func (s *ShardedMutex) Lock(key string) func() {
	mu := s.shard(key)
	mu.Lock()
	return mu.Unlock
}

func (s *ShardedMutex) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}
