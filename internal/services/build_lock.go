package services

import "sync"

// keyedMutex serialises dataset builds per cache key so concurrent misses for
// the same (project, result type, scope key) tuple compute once instead of
// racing. Entries are reference counted and removed once idle.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*buildLock
}

type buildLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*buildLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &buildLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
