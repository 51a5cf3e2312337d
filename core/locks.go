package core

import "sync"

// symbolLocks serializes refreshes per symbol. Refreshing two different
// symbols concurrently is fine, two refreshes of the same symbol are not,
// they would interleave upsert batches.
type symbolLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (sl *symbolLocks) get(symbol string) *sync.Mutex {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.locks == nil {
		sl.locks = make(map[string]*sync.Mutex)
	}

	lock, ok := sl.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		sl.locks[symbol] = lock
	}

	return lock
}
