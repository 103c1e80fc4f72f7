package usecase

import "sync"

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// roomLocks hands out one mutex per room id. An entry lives only while
// someone holds or waits for it.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

func newRoomLocks() *roomLocks {
	return &roomLocks{
		locks: make(map[string]*roomLock),
	}
}

func (that *roomLocks) lock(roomID string) func() {
	that.mu.Lock()
	l, ok := that.locks[roomID]
	if !ok {
		l = &roomLock{}
		that.locks[roomID] = l
	}
	l.refs++
	that.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		that.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, roomID)
		}
		that.mu.Unlock()
	}
}
