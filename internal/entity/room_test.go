package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_AddSlot(t *testing.T) {
	t.Run("newcomer gets white", func(t *testing.T) {
		// Given: a room with only the host
		now := time.Now()
		room := NewRoom("room-1", "host", now)

		// When: a guest joins
		slot := room.AddSlot("guest", now.Add(time.Second))

		// Then: host keeps black, guest takes white
		assert.Equal(t, White, slot.Color)
		host, _ := room.SlotOf("host")
		assert.Equal(t, Black, host.Color)
		assert.True(t, room.IsFull())
	})

	t.Run("host holding white is moved back to black", func(t *testing.T) {
		// Given: a host left on white after a color swap
		now := time.Now()
		room := NewRoom("room-1", "host", now)
		room.Slots[0].Color = White

		// When: a guest joins
		room.AddSlot("guest", now)

		// Then: exactly one black slot, owned by the host
		black, ok := room.SlotByColor(Black)
		require.True(t, ok)
		assert.Equal(t, "host", black.ConnID)
		assert.True(t, room.HasDistinctColors())
	})
}

func TestRoom_RemoveSlot(t *testing.T) {
	t.Run("host leaves and the earliest member inherits", func(t *testing.T) {
		// Given: a full room where colors were swapped
		now := time.Now()
		room := NewRoom("room-1", "host", now)
		room.AddSlot("guest", now.Add(time.Second))
		room.SwapColors()

		// When: the host leaves
		removed := room.RemoveSlot("host")

		// Then: the guest is host and plays black
		require.True(t, removed)
		assert.Equal(t, "guest", room.HostID)
		require.Len(t, room.Slots, 1)
		assert.Equal(t, Black, room.Slots[0].Color)
	})

	t.Run("unknown connection", func(t *testing.T) {
		room := NewRoom("room-1", "host", time.Now())

		assert.False(t, room.RemoveSlot("stranger"))
		assert.Len(t, room.Slots, 1)
	})
}

func TestRoom_Clone(t *testing.T) {
	// Given: a room with a start time
	now := time.Now()
	room := NewRoom("room-1", "host", now)
	room.StartedAt = &now

	// When: the clone is modified
	cp := room.Clone()
	cp.Slots[0].Ready = true
	cp.Status = StatusPlaying

	// Then: the original is untouched
	assert.False(t, room.Slots[0].Ready)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.NotSame(t, room.StartedAt, cp.StartedAt)
}

func TestGameSession_Begin(t *testing.T) {
	// Given: a concluded session with stones
	session := NewGameSession("room-1")
	session.Begin()
	session.Board[7][7] = Black
	session.Moves = append(session.Moves, Move{Row: 7, Col: 7, Color: Black, Seq: 1})
	session.Conclude(Black)

	// When: a new game begins
	session.Begin()

	// Then: everything is rebuilt
	assert.Equal(t, &GameSession{RoomID: "room-1", Moves: []Move{}, Turn: Black, State: SessionInProgress}, session)
}
