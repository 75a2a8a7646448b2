package application

import "sync"

// recordLocker serializes state transitions per record id. Entries are
// reference counted and dropped once nobody holds or waits for them.
type recordLocker struct {
	mtx   sync.Mutex
	locks map[string]*recordLock
}

type recordLock struct {
	sync.Mutex
	refs int
}

func newRecordLocker() *recordLocker {
	return &recordLocker{locks: make(map[string]*recordLock)}
}

// lock blocks until the lock for id is acquired and returns the function
// releasing it.
func (l *recordLocker) lock(id string) func() {
	l.mtx.Lock()
	rl, ok := l.locks[id]
	if !ok {
		rl = &recordLock{}
		l.locks[id] = rl
	}
	rl.refs++
	l.mtx.Unlock()

	rl.Lock()
	return func() {
		rl.Unlock()

		l.mtx.Lock()
		rl.refs--
		if rl.refs <= 0 {
			delete(l.locks, id)
		}
		l.mtx.Unlock()
	}
}
