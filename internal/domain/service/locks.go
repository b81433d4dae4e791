package service

import "sync"

// userLocks enforces a single in-flight check per user.
type userLocks struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newUserLocks() *userLocks {
	return &userLocks{active: make(map[string]struct{})}
}

// tryLock returns false if userID is already held.
func (l *userLocks) tryLock(userID string) (unlock func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.active[userID]; busy {
		return nil, false
	}
	l.active[userID] = struct{}{}

	return func() {
		l.mu.Lock()
		delete(l.active, userID)
		l.mu.Unlock()
	}, true
}
