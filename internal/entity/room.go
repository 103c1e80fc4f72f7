package entity

import (
	"errors"
	"slices"
	"time"
)

const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"

	MaxSlots = 2
)

var (
	ErrUnknownSessionState = errors.New("unknown session state")
)

// Slot is a connection's seat in a room.
type Slot struct {
	ConnID   string    `json:"conn_id"`
	Color    Color     `json:"color"`
	Ready    bool      `json:"ready"`
	JoinedAt time.Time `json:"joined_at"`
}

type Room struct {
	ID        string     `json:"id"`
	HostID    string     `json:"host_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Slots     []*Slot    `json:"slots"`
}

func NewRoom(id, hostID string, now time.Time) *Room {
	return &Room{
		ID:        id,
		HostID:    hostID,
		Status:    StatusWaiting,
		CreatedAt: now,
		Slots: []*Slot{
			{ConnID: hostID, Color: Black, JoinedAt: now},
		},
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFull() bool {
	return len(that.Slots) >= MaxSlots
}

func (that *Room) IsHost(connID string) bool {
	return that.HostID == connID
}

func (that *Room) SlotOf(connID string) (*Slot, bool) {
	for _, slot := range that.Slots {
		if slot.ConnID == connID {
			return slot, true
		}
	}
	return nil, false
}

// Guest returns the first slot that is not the host's.
func (that *Room) Guest() (*Slot, bool) {
	for _, slot := range that.Slots {
		if slot.ConnID != that.HostID {
			return slot, true
		}
	}
	return nil, false
}

func (that *Room) SlotByColor(color Color) (*Slot, bool) {
	for _, slot := range that.Slots {
		if slot.Color == color {
			return slot, true
		}
	}
	return nil, false
}

// AddSlot seats a newcomer as white and keeps the host on black.
func (that *Room) AddSlot(connID string, now time.Time) *Slot {
	slot := &Slot{ConnID: connID, Color: White, JoinedAt: now}
	that.Slots = append(that.Slots, slot)
	that.SeatHostFirst()
	return slot
}

// RemoveSlot drops the connection's slot and hands the host role to the
// earliest-joined remaining member when needed.
func (that *Room) RemoveSlot(connID string) bool {
	idx := slices.IndexFunc(that.Slots, func(slot *Slot) bool { return slot.ConnID == connID })
	if idx < 0 {
		return false
	}
	that.Slots = slices.Delete(that.Slots, idx, idx+1)

	if that.HostID == connID && len(that.Slots) > 0 {
		earliest := slices.MinFunc(that.Slots, func(a, b *Slot) int { return a.JoinedAt.Compare(b.JoinedAt) })
		that.HostID = earliest.ConnID
	}
	that.SeatHostFirst()

	return true
}

// SeatHostFirst gives black to the host and white to everyone else.
func (that *Room) SeatHostFirst() {
	for _, slot := range that.Slots {
		if slot.ConnID == that.HostID {
			slot.Color = Black
		} else {
			slot.Color = White
		}
	}
}

// SwapColors exchanges the colors of the two seated players.
func (that *Room) SwapColors() {
	for _, slot := range that.Slots {
		slot.Color = slot.Color.Opponent()
	}
}

func (that *Room) ClearReady() {
	for _, slot := range that.Slots {
		slot.Ready = false
	}
}

// HasDistinctColors reports whether every color is held by at most one slot.
func (that *Room) HasDistinctColors() bool {
	seen := make(map[Color]bool, len(that.Slots))
	for _, slot := range that.Slots {
		if !slot.Color.IsValid() || seen[slot.Color] {
			return false
		}
		seen[slot.Color] = true
	}
	return true
}

func (that *Room) Clone() *Room {
	cp := *that
	if that.StartedAt != nil {
		startedAt := *that.StartedAt
		cp.StartedAt = &startedAt
	}
	cp.Slots = make([]*Slot, 0, len(that.Slots))
	for _, slot := range that.Slots {
		s := *slot
		cp.Slots = append(cp.Slots, &s)
	}
	return &cp
}
