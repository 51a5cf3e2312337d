package core

import (
	"sync"
	"testing"

	ex "stockintel/extensions"
)

func Test_SymbolLocks_SameSymbolSharesALock(t *testing.T) {
	var sl symbolLocks

	first := sl.get("RELIANCE.NS")
	second := sl.get("RELIANCE.NS")
	other := sl.get("TCS.NS")

	ex.AssertAreEqual(t, "same symbol lock", first, second)
	if first == other {
		t.Fatalf("distinct symbols must not share a lock")
	}
}

func Test_SymbolLocks_ConcurrentGetIsSafe(t *testing.T) {
	var sl symbolLocks
	var wg sync.WaitGroup

	locks := make([]*sync.Mutex, 16)
	for i := range locks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks[i] = sl.get("INFY.NS")
		}()
	}
	wg.Wait()

	for i := 1; i < len(locks); i++ {
		ex.AssertAreEqual(t, "lock identity", locks[0], locks[i])
	}
}
