package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

var ErrRoomNotFound = errors.New("room not found")

const roomIndexKey = "rooms"

// RoomRepository is the durable record of rooms and their slots.
type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	// List returns rooms newest first.
	List(ctx context.Context) ([]*entity.Room, error)
	Purge(ctx context.Context) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomKey(room.ID), roomJSON, 0)
		pipe.ZAdd(ctx, roomIndexKey, redis.Z{Score: float64(room.CreatedAt.UnixMilli()), Member: room.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, roomKey(id))
		pipe.ZRem(ctx, roomIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete room by ID: %w", err)
	}

	return nil
}

func (that *dbRoom) List(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.ZRevRange(ctx, roomIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read room index: %w", err)
	}

	if len(ids) == 0 {
		return []*entity.Room{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, roomKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(values))
	for _, value := range values {
		// the index may briefly outlive a deleted room
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var room entity.Room
		if err = json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

func (that *dbRoom) Purge(ctx context.Context) error {
	ids, err := that.client.ZRange(ctx, roomIndexKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read room index: %w", err)
	}

	keys := []string{roomIndexKey}
	for _, id := range ids {
		keys = append(keys, roomKey(id))
	}

	if err = that.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to purge rooms: %w", err)
	}

	return nil
}
