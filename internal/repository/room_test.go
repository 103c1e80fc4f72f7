package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/renju-backend/internal/entity"
	"github.com/rocketscienceinc/renju-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repoFactory func(t *testing.T) (context.Context, RoomRepository)

var backends = map[string]repoFactory{
	"memory": func(t *testing.T) (context.Context, RoomRepository) {
		return context.Background(), NewMemoryRoomRepository()
	},
	"redis": func(t *testing.T) (context.Context, RoomRepository) {
		ctx, st := suite.New(t)
		return ctx, NewRoomRepository(st.Storage)
	},
	"sqlite": func(t *testing.T) (context.Context, RoomRepository) {
		ctx, st := suite.NewSQLite(t)
		return ctx, NewSQLRoomRepository(st.DB)
	},
}

func fullRoom(id string, created time.Time) *entity.Room {
	room := entity.NewRoom(id, "host-"+id, created)
	room.AddSlot("guest-"+id, created.Add(time.Second))
	return room
}

func TestRoomRepository_CreateOrUpdate(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx, repo := newRepo(t)

			// Given: a room with two slots
			room := fullRoom("1", time.Now().UTC())

			// When: it is stored and the guest becomes ready
			require.NoError(t, repo.CreateOrUpdate(ctx, room))

			room.Slots[1].Ready = true
			room.Status = entity.StatusPlaying
			started := time.Now().UTC()
			room.StartedAt = &started
			require.NoError(t, repo.CreateOrUpdate(ctx, room))

			// Then: the latest version is read back
			stored, err := repo.GetByID(ctx, room.ID)
			require.NoError(t, err)
			assert.Equal(t, room.HostID, stored.HostID)
			assert.Equal(t, entity.StatusPlaying, stored.Status)
			require.NotNil(t, stored.StartedAt)
			assert.True(t, started.Equal(*stored.StartedAt))
			require.Len(t, stored.Slots, 2)
			assert.Equal(t, "host-1", stored.Slots[0].ConnID)
			assert.Equal(t, entity.Black, stored.Slots[0].Color)
			assert.False(t, stored.Slots[0].Ready)
			assert.Equal(t, entity.White, stored.Slots[1].Color)
			assert.True(t, stored.Slots[1].Ready)
		})
	}
}

func TestRoomRepository_SlotsAreReplaced(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx, repo := newRepo(t)

			// Given: a stored full room
			room := fullRoom("1", time.Now().UTC())
			require.NoError(t, repo.CreateOrUpdate(ctx, room))

			// When: the guest leaves and the room is saved again
			room.RemoveSlot("guest-1")
			require.NoError(t, repo.CreateOrUpdate(ctx, room))

			// Then: only the host slot remains
			stored, err := repo.GetByID(ctx, room.ID)
			require.NoError(t, err)
			require.Len(t, stored.Slots, 1)
			assert.Equal(t, "host-1", stored.Slots[0].ConnID)
		})
	}
}

func TestRoomRepository_GetByID(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name+"/NotFound", func(t *testing.T) {
			ctx, repo := newRepo(t)

			// When: an unknown id is requested
			room, err := repo.GetByID(ctx, "missing")

			// Then: ErrRoomNotFound is returned
			require.ErrorIs(t, err, ErrRoomNotFound)
			assert.Nil(t, room)
		})
	}
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx, repo := newRepo(t)

			// Given: a stored room
			room := fullRoom("1", time.Now().UTC())
			require.NoError(t, repo.CreateOrUpdate(ctx, room))

			// When: it is deleted twice
			require.NoError(t, repo.DeleteByID(ctx, room.ID))
			require.NoError(t, repo.DeleteByID(ctx, room.ID))

			// Then: it is gone from lookups and listings
			_, err := repo.GetByID(ctx, room.ID)
			require.ErrorIs(t, err, ErrRoomNotFound)

			rooms, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, rooms)
		})
	}
}

func TestRoomRepository_List(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx, repo := newRepo(t)

			// Given: three rooms created a minute apart
			base := time.Now().UTC()
			for i, id := range []string{"old", "mid", "new"} {
				require.NoError(t, repo.CreateOrUpdate(ctx, fullRoom(id, base.Add(time.Duration(i)*time.Minute))))
			}

			// When: rooms are listed
			rooms, err := repo.List(ctx)
			require.NoError(t, err)

			// Then: newest come first, each with its slots
			require.Len(t, rooms, 3)
			assert.Equal(t, "new", rooms[0].ID)
			assert.Equal(t, "mid", rooms[1].ID)
			assert.Equal(t, "old", rooms[2].ID)
			for _, room := range rooms {
				assert.Len(t, room.Slots, 2)
			}
		})
	}
}

func TestRoomRepository_Purge(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			ctx, repo := newRepo(t)

			// Given: two stored rooms
			require.NoError(t, repo.CreateOrUpdate(ctx, fullRoom("a", time.Now().UTC())))
			require.NoError(t, repo.CreateOrUpdate(ctx, fullRoom("b", time.Now().UTC())))

			// When: the store is purged
			require.NoError(t, repo.Purge(ctx))

			// Then: nothing is left
			rooms, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, rooms)

			_, err = repo.GetByID(ctx, "a")
			require.ErrorIs(t, err, ErrRoomNotFound)
		})
	}
}

func TestMemoryRoomRepository_Isolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRoomRepository()

	// Given: a stored room
	room := fullRoom("1", time.Now())
	require.NoError(t, repo.CreateOrUpdate(ctx, room))

	// When: the caller keeps mutating its own copy
	room.Slots[0].Ready = true

	// Then: the stored room does not change
	stored, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.False(t, stored.Slots[0].Ready)
}

func TestSessionRepository(t *testing.T) {
	sessions := NewSessionRepository()

	// Given: a started session
	session := entity.NewGameSession("room-1")
	session.Begin()
	sessions.Set(session)

	// When: the caller places a stone on its own copy
	session.Board[7][7] = entity.Black

	// Then: the stored session is unchanged until Set is called again
	stored, ok := sessions.Get("room-1")
	require.True(t, ok)
	assert.Equal(t, entity.NoColor, stored.Board[7][7])

	sessions.Delete("room-1")
	_, ok = sessions.Get("room-1")
	assert.False(t, ok)
}
