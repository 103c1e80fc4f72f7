package turnclock

import (
	"log/slog"
	"sync"
	"time"
)

// ExpireFunc is called when a player's turn runs out.
type ExpireFunc func(roomID, connID string)

type timer struct {
	t     *time.Timer
	token uint64
}

// Clock keeps one pending turn timer per room.
type Clock struct {
	logger   *slog.Logger
	timeout  time.Duration
	onExpire ExpireFunc

	mu     sync.Mutex
	timers map[string]timer
	seq    uint64
}

func New(logger *slog.Logger, timeout time.Duration, onExpire ExpireFunc) *Clock {
	return &Clock{
		logger:   logger.With("component", "turn_clock"),
		timeout:  timeout,
		onExpire: onExpire,
		timers:   make(map[string]timer),
	}
}

// Arm restarts the room's timer for the connection holding the turn.
func (that *Clock) Arm(roomID, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if pending, ok := that.timers[roomID]; ok {
		pending.t.Stop()
	}

	that.seq++
	token := that.seq
	that.timers[roomID] = timer{
		token: token,
		t: time.AfterFunc(that.timeout, func() {
			that.fire(roomID, connID, token)
		}),
	}
}

func (that *Clock) Disarm(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if pending, ok := that.timers[roomID]; ok {
		pending.t.Stop()
		delete(that.timers, roomID)
	}
}

// Pending reports how many rooms have a running timer.
func (that *Clock) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.timers)
}

func (that *Clock) fire(roomID, connID string, token uint64) {
	that.mu.Lock()
	pending, ok := that.timers[roomID]
	// a timer that was stopped too late must not act on a newer turn
	if !ok || pending.token != token {
		that.mu.Unlock()
		return
	}
	delete(that.timers, roomID)
	that.mu.Unlock()

	that.logger.Debug("turn expired", "room_id", roomID, "conn_id", connID)
	that.onExpire(roomID, connID)
}
