package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

type memRoom struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

// NewMemoryRoomRepository keeps rooms in process memory. Rooms are copied on
// the way in and out so callers never share state with the store.
func NewMemoryRoomRepository() RoomRepository {
	return &memRoom{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *memRoom) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room.Clone()

	return nil
}

func (that *memRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room.Clone(), nil
}

func (that *memRoom) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

func (that *memRoom) List(_ context.Context) ([]*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room.Clone())
	}

	slices.SortFunc(rooms, func(a, b *entity.Room) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return rooms, nil
}

func (that *memRoom) Purge(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	clear(that.rooms)

	return nil
}
