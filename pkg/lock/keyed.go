package lock

import (
	"fmt"
	"sync"

	"github.com/moby/locker"
)

// Keyed hands out one mutex per key. Locks are reference counted by locker
// and dropped once nobody holds or waits on them.
type Keyed[K comparable] struct {
	locks *locker.Locker
}

// NewKeyed creates an empty keyed mutex
func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{locks: locker.New()}
}

// Lock blocks until key is held and returns the matching unlock func.
// Calling the unlock func more than once is a no-op.
func (k *Keyed[K]) Lock(key K) func() {
	name := fmt.Sprint(key)
	k.locks.Lock(name)

	var once sync.Once
	return func() {
		once.Do(func() {
			// Unlock only fails for a name nobody holds, which once rules out
			_ = k.locks.Unlock(name)
		})
	}
}
