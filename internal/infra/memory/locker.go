package memory

import (
	"context"
	"sync"
)

// AttemptLocker is a process-local keyed mutex. Entries are dropped once nobody holds or waits on them.
type AttemptLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func NewAttemptLocker() *AttemptLocker {
	return &AttemptLocker{locks: make(map[int64]*keyedLock)}
}

func (l *AttemptLocker) Lock(ctx context.Context, attemptID int64) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[attemptID]
	if !ok {
		lock = &keyedLock{sem: make(chan struct{}, 1)}
		l.locks[attemptID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(attemptID, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.sem
			l.release(attemptID, lock)
		})
	}, nil
}

func (l *AttemptLocker) release(attemptID int64, lock *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, attemptID)
	}
}

func (l *AttemptLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
