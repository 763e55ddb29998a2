package service

import "sync"

// keyedLocks serializes sync runs per site id without blocking callers:
// a second attempt for a held key is rejected, never queued, so operator
// feedback stays immediate and no backlog builds up during outages.
type keyedLocks struct {
	mu   sync.Mutex
	held map[int64]bool
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{held: make(map[int64]bool)}
}

// TryLock acquires the lock for id, reporting false if already held.
func (l *keyedLocks) TryLock(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] {
		return false
	}
	l.held[id] = true
	return true
}

// Unlock releases the lock for id.
func (l *keyedLocks) Unlock(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
