package usecase

import (
	"time"

	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

type SlotView struct {
	ConnID   string       `json:"conn_id"`
	Color    entity.Color `json:"color"`
	Ready    bool         `json:"ready"`
	IsHost   bool         `json:"is_host"`
	JoinedAt time.Time    `json:"joined_at"`
}

type RoomView struct {
	ID        string     `json:"id"`
	HostID    string     `json:"host_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Players   []SlotView `json:"players"`
}

type GameView struct {
	Board  entity.Board  `json:"board"`
	Moves  []entity.Move `json:"moves"`
	Turn   entity.Color  `json:"turn"`
	Winner entity.Color  `json:"winner,omitempty"`
	State  string        `json:"state"`
}

// RoomState is a room together with its live game.
type RoomState struct {
	Room RoomView  `json:"room"`
	Game *GameView `json:"game,omitempty"`
}

// MoveResult is the game after a turn ends. Move is nil when the turn ended
// without a stone, by surrender or timeout.
type MoveResult struct {
	RoomID string       `json:"room_id"`
	Move   *entity.Move `json:"move,omitempty"`
	Game   GameView     `json:"game"`
}

type LeaveResult struct {
	RoomID  string    `json:"room_id"`
	Deleted bool      `json:"deleted"`
	Room    *RoomView `json:"room,omitempty"`
}

// RoomSummary is a lobby entry.
type RoomSummary struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Status      string    `json:"status"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRoomView(room *entity.Room) RoomView {
	view := RoomView{
		ID:        room.ID,
		HostID:    room.HostID,
		Status:    room.Status,
		CreatedAt: room.CreatedAt,
		StartedAt: room.StartedAt,
		Players:   make([]SlotView, 0, len(room.Slots)),
	}

	for _, slot := range room.Slots {
		view.Players = append(view.Players, SlotView{
			ConnID:   slot.ConnID,
			Color:    slot.Color,
			Ready:    slot.Ready,
			IsHost:   room.IsHost(slot.ConnID),
			JoinedAt: slot.JoinedAt,
		})
	}

	return view
}

func newGameView(session *entity.GameSession) GameView {
	return GameView{
		Board:  session.Board,
		Moves:  append([]entity.Move{}, session.Moves...),
		Turn:   session.Turn,
		Winner: session.Winner,
		State:  session.State,
	}
}

func newRoomState(room *entity.Room, session *entity.GameSession) *RoomState {
	state := &RoomState{Room: newRoomView(room)}
	if session != nil {
		game := newGameView(session)
		state.Game = &game
	}
	return state
}

func newRoomSummary(room *entity.Room) RoomSummary {
	return RoomSummary{
		ID:          room.ID,
		HostID:      room.HostID,
		Status:      room.Status,
		MemberCount: len(room.Slots),
		CreatedAt:   room.CreatedAt,
	}
}

func memberIDs(room *entity.Room) []string {
	ids := make([]string, 0, len(room.Slots))
	for _, slot := range room.Slots {
		ids = append(ids, slot.ConnID)
	}
	return ids
}
