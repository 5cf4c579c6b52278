package app

import "sync"

// orderLocks serializes the read-decide-write sequences that race on one
// order: webhook confirmation, polling confirmation and retry. Entries are
// refcounted so the map does not grow with order history.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: make(map[string]*orderLock)}
}

// Lock acquires the per-order mutex and returns its release func.
func (l *orderLocks) Lock(orderID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[orderID]
	if !ok {
		entry = &orderLock{}
		l.locks[orderID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, orderID)
		}
		l.mu.Unlock()
	}
}
