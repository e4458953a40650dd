package syncutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_SerializesSameKey(t *testing.T) {
	var sm ShardedMutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := sm.Lock("player-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutex_UnlockReleases(t *testing.T) {
	var sm ShardedMutex
	unlock := sm.Lock("k")
	unlock()

	done := make(chan struct{})
	go func() {
		unlock := sm.Lock("k")
		unlock()
		close(done)
	}()
	<-done
}
