package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

type sqlRoom struct {
	db *sql.DB
}

// NewSQLRoomRepository stores rooms in the rooms and slots tables.
func NewSQLRoomRepository(db *sql.DB) RoomRepository {
	return &sqlRoom{
		db: db,
	}
}

func (that *sqlRoom) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	tx, err := that.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const upsertRoom = `
		INSERT INTO rooms (id, host_id, status, created_at, started_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			host_id = excluded.host_id,
			status = excluded.status,
			started_at = excluded.started_at`

	// stored in UTC so that text ordering matches time ordering
	var startedAt sql.NullTime
	if room.StartedAt != nil {
		startedAt = sql.NullTime{Time: room.StartedAt.UTC(), Valid: true}
	}

	if _, err = tx.ExecContext(ctx, upsertRoom, room.ID, room.HostID, room.Status, room.CreatedAt.UTC(), startedAt); err != nil {
		return fmt.Errorf("failed to upsert room: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM slots WHERE room_id = ?`, room.ID); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}

	const insertSlot = `INSERT INTO slots (room_id, conn_id, color, ready, joined_at) VALUES (?, ?, ?, ?, ?)`
	for _, slot := range room.Slots {
		if _, err = tx.ExecContext(ctx, insertSlot, room.ID, slot.ConnID, string(slot.Color), slot.Ready, slot.JoinedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room: %w", err)
	}

	return nil
}

func (that *sqlRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	const query = `SELECT id, host_id, status, created_at, started_at FROM rooms WHERE id = ?`

	room, err := scanRoom(that.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	slots, err := that.slots(ctx, `WHERE room_id = ?`, id)
	if err != nil {
		return nil, err
	}
	room.Slots = slots[room.ID]
	if room.Slots == nil {
		room.Slots = []*entity.Slot{}
	}

	return room, nil
}

func (that *sqlRoom) DeleteByID(ctx context.Context, id string) error {
	// slots go with the room through the foreign key cascade
	if _, err := that.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete room by ID: %w", err)
	}

	return nil
}

func (that *sqlRoom) List(ctx context.Context) ([]*entity.Room, error) {
	const query = `SELECT id, host_id, status, created_at, started_at FROM rooms ORDER BY created_at DESC`

	rows, err := that.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []*entity.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	slots, err := that.slots(ctx, "")
	if err != nil {
		return nil, err
	}

	for _, room := range rooms {
		room.Slots = slots[room.ID]
		if room.Slots == nil {
			room.Slots = []*entity.Slot{}
		}
	}

	return rooms, nil
}

func (that *sqlRoom) Purge(ctx context.Context) error {
	if _, err := that.db.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
		return fmt.Errorf("failed to purge rooms: %w", err)
	}

	return nil
}

// slots loads slots grouped by room id, earliest joined first.
func (that *sqlRoom) slots(ctx context.Context, where string, args ...any) (map[string][]*entity.Slot, error) {
	query := `SELECT room_id, conn_id, color, ready, joined_at FROM slots ` + where + ` ORDER BY joined_at`

	rows, err := that.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]*entity.Slot)
	for rows.Next() {
		var (
			roomID string
			color  string
			slot   entity.Slot
		)
		if err = rows.Scan(&roomID, &slot.ConnID, &color, &slot.Ready, &slot.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slot.Color = entity.Color(color)
		grouped[roomID] = append(grouped[roomID], &slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}

	return grouped, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*entity.Room, error) {
	var (
		room      entity.Room
		startedAt sql.NullTime
	)

	if err := row.Scan(&room.ID, &room.HostID, &room.Status, &room.CreatedAt, &startedAt); err != nil {
		return nil, err
	}

	if startedAt.Valid {
		t := startedAt.Time
		room.StartedAt = &t
	}

	return &room, nil
}
