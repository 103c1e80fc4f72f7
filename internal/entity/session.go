package entity

import (
	"fmt"

	"github.com/rocketscienceinc/renju-backend/internal/apperror"
)

const (
	SessionEmpty      = "empty"
	SessionInProgress = "in_progress"
	SessionConcluded  = "concluded"
)

type Move struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	Color Color `json:"color"`
	Seq   int   `json:"seq"`
}

// GameSession is the live board of a room. It is never persisted.
type GameSession struct {
	RoomID string `json:"room_id"`
	Board  Board  `json:"board"`
	Moves  []Move `json:"moves"`
	Turn   Color  `json:"turn"`
	Winner Color  `json:"winner"`
	State  string `json:"state"`
}

func NewGameSession(roomID string) *GameSession {
	return &GameSession{
		RoomID: roomID,
		Moves:  []Move{},
		Turn:   Black,
		State:  SessionEmpty,
	}
}

// Begin rebuilds the session as a fresh game with black to move.
func (that *GameSession) Begin() {
	*that = GameSession{
		RoomID: that.RoomID,
		Moves:  []Move{},
		Turn:   Black,
		State:  SessionInProgress,
	}
}

// Suspend stops play but keeps the board and log addressable.
func (that *GameSession) Suspend() {
	if that.State == SessionInProgress {
		that.State = SessionEmpty
	}
}

func (that *GameSession) Conclude(winner Color) {
	that.Winner = winner
	that.State = SessionConcluded
}

func (that *GameSession) IsInProgress() bool {
	return that.State == SessionInProgress
}

func (that *GameSession) IsConcluded() bool {
	return that.State == SessionConcluded
}

func (that *GameSession) ConfirmInProgress() error {
	switch that.State {
	case SessionConcluded:
		return apperror.ErrGameFinished
	case SessionEmpty:
		return apperror.ErrGameIsNotStarted
	case SessionInProgress:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSessionState, that.State)
	}
}

func (that *GameSession) LastMove() (Move, bool) {
	if len(that.Moves) == 0 {
		return Move{}, false
	}
	return that.Moves[len(that.Moves)-1], true
}

// Clone returns a deep copy safe to hand out of a room lock.
func (that *GameSession) Clone() *GameSession {
	cp := *that
	cp.Moves = append([]Move{}, that.Moves...)
	return &cp
}
