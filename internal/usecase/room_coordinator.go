package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/renju-backend/internal/apperror"
	"github.com/rocketscienceinc/renju-backend/internal/entity"
	"github.com/rocketscienceinc/renju-backend/internal/renju"
	"github.com/rocketscienceinc/renju-backend/internal/repository"
)

const (
	EventRoomUpdated = "room:updated"
	EventRoomDeleted = "room:deleted"
	EventGameStarted = "game:started"
	EventGameMove    = "game:move"
	EventGameOver    = "game:over"
	EventGameReset   = "game:reset"
	EventTurnPassed  = "game:turn"
	EventLobbyRooms  = "lobby:rooms"
)

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Room, error)
}

type sessionRepo interface {
	Get(roomID string) (*entity.GameSession, bool)
	Set(session *entity.GameSession)
	Delete(roomID string)
}

// Broadcaster delivers server events to connected clients. Calls must not block.
type Broadcaster interface {
	ToConnections(connIDs []string, event string, payload any)
	ToAll(event string, payload any)
}

type turnClock interface {
	Arm(roomID, connID string)
	Disarm(roomID string)
}

type noClock struct{}

func (noClock) Arm(string, string) {}
func (noClock) Disarm(string)      {}

// RoomCoordinator owns every room operation. Operations on one room are
// serialized; each commits to the room store, then the session store, then broadcasts.
type RoomCoordinator struct {
	logger      *slog.Logger
	rooms       roomRepo
	sessions    sessionRepo
	broadcaster Broadcaster
	clock       turnClock
	locks       *roomLocks

	// lobbyMu orders lobby snapshots so a stale list never follows a newer one.
	lobbyMu sync.Mutex
}

func NewRoomCoordinator(logger *slog.Logger, rooms roomRepo, sessions sessionRepo, broadcaster Broadcaster) *RoomCoordinator {
	return &RoomCoordinator{
		logger:      logger.With("component", "room_coordinator"),
		rooms:       rooms,
		sessions:    sessions,
		broadcaster: broadcaster,
		clock:       noClock{},
		locks:       newRoomLocks(),
	}
}

func (that *RoomCoordinator) SetTurnClock(clock turnClock) {
	that.clock = clock
}

func (that *RoomCoordinator) OpenRoom(ctx context.Context, connID string) (*RoomState, error) {
	log := that.logger.With("method", "OpenRoom", "conn_id", connID)

	roomID := uuid.NewString()

	state, err := func() (*RoomState, error) {
		unlock := that.locks.lock(roomID)
		defer unlock()

		room := entity.NewRoom(roomID, connID, time.Now())
		if err := that.rooms.CreateOrUpdate(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		session := entity.NewGameSession(roomID)
		that.sessions.Set(session)

		log.Info("room opened", "room_id", roomID)

		return newRoomState(room, session), nil
	}()
	if err != nil {
		log.Error("failed to open room", "error", err)
		return nil, err
	}

	that.leaveOtherRooms(ctx, connID, roomID)
	that.publishLobby(ctx)

	return state, nil
}

func (that *RoomCoordinator) JoinRoom(ctx context.Context, connID, roomID string) (*RoomState, error) {
	log := that.logger.With("method", "JoinRoom", "conn_id", connID, "room_id", roomID)

	state, joined, err := func() (*RoomState, bool, error) {
		unlock := that.locks.lock(roomID)
		defer unlock()

		room, err := that.getRoom(ctx, roomID)
		if err != nil {
			return nil, false, err
		}

		if _, ok := room.SlotOf(connID); ok {
			return newRoomState(room, that.session(roomID)), false, nil
		}

		if room.IsPlaying() {
			return nil, false, apperror.ErrAlreadyStarted
		}

		if room.IsFull() {
			return nil, false, apperror.ErrRoomFull
		}

		room.AddSlot(connID, time.Now())
		if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
			return nil, false, fmt.Errorf("failed to update room: %w", err)
		}

		// a board left by a mid-game leave stays visible until the next start.
		session, ok := that.sessions.Get(roomID)
		if !ok || session.IsConcluded() {
			session = entity.NewGameSession(roomID)
			that.sessions.Set(session)
		}

		state := newRoomState(room, session)
		that.toRoom(room, EventRoomUpdated, state)

		return state, true, nil
	}()
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	if joined {
		log.Info("player joined")
		that.leaveOtherRooms(ctx, connID, roomID)
		that.publishLobby(ctx)
	}

	return state, nil
}

func (that *RoomCoordinator) ToggleReady(ctx context.Context, connID, roomID string) (*RoomState, error) {
	log := that.logger.With("method", "ToggleReady", "conn_id", connID, "room_id", roomID)

	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	slot, ok := room.SlotOf(connID)
	if !ok {
		return nil, apperror.ErrNotMember
	}

	slot.Ready = !slot.Ready
	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		log.Error("failed to update room", "error", err)
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	state := newRoomState(room, that.session(roomID))
	that.toRoom(room, EventRoomUpdated, state)

	log.Debug("ready toggled", "ready", slot.Ready)

	return state, nil
}

func (that *RoomCoordinator) StartGame(ctx context.Context, connID, roomID string) (*RoomState, error) {
	log := that.logger.With("method", "StartGame", "conn_id", connID, "room_id", roomID)

	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	if err = validateStart(room, connID); err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	if !room.HasDistinctColors() {
		log.Error("players share a color", "error", apperror.ErrInvariantViolation)
		return nil, apperror.ErrInvariantViolation
	}

	now := time.Now()
	room.Status = entity.StatusPlaying
	room.StartedAt = &now
	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		log.Error("failed to update room", "error", err)
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	session := entity.NewGameSession(roomID)
	session.Begin()
	that.sessions.Set(session)

	state := newRoomState(room, session)
	that.toRoom(room, EventGameStarted, state)
	that.armTurn(room, session)

	log.Info("game started")

	that.publishLobby(ctx)

	return state, nil
}

func validateStart(room *entity.Room, connID string) error {
	if !room.IsHost(connID) {
		return apperror.ErrNotHost
	}

	if room.IsPlaying() {
		return apperror.ErrAlreadyStarted
	}

	if len(room.Slots) != entity.MaxSlots {
		return apperror.ErrWrongPlayerCount
	}

	if guest, ok := room.Guest(); !ok || !guest.Ready {
		return apperror.ErrGuestNotReady
	}

	return nil
}

func (that *RoomCoordinator) PlaceMove(ctx context.Context, connID, roomID string, row, col int) (*MoveResult, error) {
	log := that.logger.With("method", "PlaceMove", "conn_id", connID, "room_id", roomID)

	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	slot, ok := room.SlotOf(connID)
	if !ok {
		return nil, apperror.ErrNotMember
	}

	session := that.session(roomID)

	move, err := renju.MakeMove(session, slot.Color, row, col)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	if session.IsConcluded() {
		room.Status = entity.StatusWaiting
		room.ClearReady()
		if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
			log.Error("failed to update room", "error", err)
			return nil, fmt.Errorf("failed to update room: %w", err)
		}
	}

	that.sessions.Set(session)

	result := &MoveResult{RoomID: roomID, Move: move, Game: newGameView(session)}
	that.toRoom(room, EventGameMove, result)

	if session.IsConcluded() {
		log.Info("game won", "winner", session.Winner, "moves", len(session.Moves))

		that.clock.Disarm(roomID)
		that.toRoom(room, EventRoomUpdated, newRoomState(room, session))
		that.publishLobby(ctx)
	} else {
		that.armTurn(room, session)
	}

	return result, nil
}

func (that *RoomCoordinator) Surrender(ctx context.Context, connID, roomID string) (*MoveResult, error) {
	log := that.logger.With("method", "Surrender", "conn_id", connID, "room_id", roomID)

	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	slot, ok := room.SlotOf(connID)
	if !ok {
		return nil, apperror.ErrNotMember
	}

	session := that.session(roomID)
	if err = renju.Surrender(session, slot.Color); err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	room.Status = entity.StatusWaiting
	room.ClearReady()
	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		log.Error("failed to update room", "error", err)
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.sessions.Set(session)
	that.clock.Disarm(roomID)

	result := &MoveResult{RoomID: roomID, Game: newGameView(session)}
	that.toRoom(room, EventGameOver, result)
	that.toRoom(room, EventRoomUpdated, newRoomState(room, session))

	log.Info("player surrendered", "winner", session.Winner)

	that.publishLobby(ctx)

	return result, nil
}

// ResetGame swaps the players' colors and starts the next game right away.
func (that *RoomCoordinator) ResetGame(ctx context.Context, connID, roomID string) (*RoomState, error) {
	log := that.logger.With("method", "ResetGame", "conn_id", connID, "room_id", roomID)

	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	if !room.IsHost(connID) {
		return nil, apperror.ErrNotHost
	}

	if guest, ok := room.Guest(); !ok || !guest.Ready {
		return nil, apperror.ErrGuestNotReady
	}

	room.SwapColors()
	if !room.HasDistinctColors() {
		log.Error("players share a color", "error", apperror.ErrInvariantViolation)
		return nil, apperror.ErrInvariantViolation
	}

	now := time.Now()
	room.Status = entity.StatusPlaying
	room.StartedAt = &now
	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		log.Error("failed to update room", "error", err)
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	session := entity.NewGameSession(roomID)
	session.Begin()
	that.sessions.Set(session)

	state := newRoomState(room, session)
	that.toRoom(room, EventGameReset, state)
	that.armTurn(room, session)

	log.Info("game reset")

	that.publishLobby(ctx)

	return state, nil
}

func (that *RoomCoordinator) LeaveRoom(ctx context.Context, connID, roomID string) (*LeaveResult, error) {
	log := that.logger.With("method", "LeaveRoom", "conn_id", connID, "room_id", roomID)

	result, err := func() (*LeaveResult, error) {
		unlock := that.locks.lock(roomID)
		defer unlock()

		room, err := that.getRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}

		wasPlaying := room.IsPlaying()
		if !room.RemoveSlot(connID) {
			view := newRoomView(room)
			return &LeaveResult{RoomID: roomID, Room: &view}, nil
		}

		if len(room.Slots) == 0 {
			if err = that.rooms.DeleteByID(ctx, roomID); err != nil {
				return nil, fmt.Errorf("failed to delete room: %w", err)
			}

			that.sessions.Delete(roomID)
			that.clock.Disarm(roomID)
			that.broadcaster.ToAll(EventRoomDeleted, map[string]string{"room_id": roomID})

			log.Info("room deleted")

			return &LeaveResult{RoomID: roomID, Deleted: true}, nil
		}

		session := that.session(roomID)
		if wasPlaying {
			room.Status = entity.StatusWaiting
			room.ClearReady()
			session.Suspend()
		}

		if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to update room: %w", err)
		}

		that.sessions.Set(session)
		if wasPlaying {
			that.clock.Disarm(roomID)
		}

		that.toRoom(room, EventRoomUpdated, newRoomState(room, session))

		log.Info("player left", "host_id", room.HostID, "was_playing", wasPlaying)

		view := newRoomView(room)
		return &LeaveResult{RoomID: roomID, Room: &view}, nil
	}()
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	that.publishLobby(ctx)

	return result, nil
}

// Disconnect removes the connection from every room it is seated in.
func (that *RoomCoordinator) Disconnect(ctx context.Context, connID string) error {
	log := that.logger.With("method", "Disconnect", "conn_id", connID)

	roomIDs, err := that.roomsOf(ctx, connID)
	if err != nil {
		log.Error("failed to find rooms of connection", "error", err)
		return err
	}

	var errs []error
	for _, roomID := range roomIDs {
		if _, err = that.LeaveRoom(ctx, connID, roomID); err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Timeout passes the turn of a player whose clock ran out.
func (that *RoomCoordinator) Timeout(ctx context.Context, connID, roomID string) (*MoveResult, error) {
	log := that.logger.With("method", "Timeout", "conn_id", connID, "room_id", roomID)

	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	slot, ok := room.SlotOf(connID)
	if !ok {
		return nil, apperror.ErrNotMember
	}

	session := that.session(roomID)
	if err = renju.PassTurn(session, slot.Color); err != nil {
		that.logFailure(log, err)
		return nil, err
	}

	that.sessions.Set(session)

	result := &MoveResult{RoomID: roomID, Game: newGameView(session)}
	that.toRoom(room, EventTurnPassed, result)
	that.armTurn(room, session)

	log.Debug("turn passed", "turn", session.Turn)

	return result, nil
}

func (that *RoomCoordinator) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	rooms, err := that.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, newRoomSummary(room))
	}

	return summaries, nil
}

func (that *RoomCoordinator) GetRoom(ctx context.Context, roomID string) (*RoomState, error) {
	unlock := that.locks.lock(roomID)
	defer unlock()

	room, err := that.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return newRoomState(room, that.session(roomID)), nil
}

func (that *RoomCoordinator) getRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// session returns the room's live session, creating an empty one when missing.
func (that *RoomCoordinator) session(roomID string) *entity.GameSession {
	if session, ok := that.sessions.Get(roomID); ok {
		return session
	}

	session := entity.NewGameSession(roomID)
	that.sessions.Set(session)

	return session
}

func (that *RoomCoordinator) roomsOf(ctx context.Context, connID string) ([]string, error) {
	rooms, err := that.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	var ids []string
	for _, room := range rooms {
		if _, ok := room.SlotOf(connID); ok {
			ids = append(ids, room.ID)
		}
	}

	return ids, nil
}

// leaveOtherRooms keeps a connection seated in a single room.
func (that *RoomCoordinator) leaveOtherRooms(ctx context.Context, connID, keepRoomID string) {
	roomIDs, err := that.roomsOf(ctx, connID)
	if err != nil {
		that.logger.Error("failed to find rooms of connection", "conn_id", connID, "error", err)
		return
	}

	for _, roomID := range roomIDs {
		if roomID == keepRoomID {
			continue
		}

		if _, err = that.LeaveRoom(ctx, connID, roomID); err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
			that.logger.Error("failed to leave previous room", "conn_id", connID, "room_id", roomID, "error", err)
		}
	}
}

func (that *RoomCoordinator) toRoom(room *entity.Room, event string, payload any) {
	that.broadcaster.ToConnections(memberIDs(room), event, payload)
}

func (that *RoomCoordinator) armTurn(room *entity.Room, session *entity.GameSession) {
	if !session.IsInProgress() {
		return
	}

	if slot, ok := room.SlotByColor(session.Turn); ok {
		that.clock.Arm(room.ID, slot.ConnID)
	}
}

func (that *RoomCoordinator) publishLobby(ctx context.Context) {
	that.lobbyMu.Lock()
	defer that.lobbyMu.Unlock()

	summaries, err := that.ListRooms(ctx)
	if err != nil {
		that.logger.Error("failed to publish lobby", "error", err)
		return
	}

	that.broadcaster.ToAll(EventLobbyRooms, summaries)
}

func (that *RoomCoordinator) logFailure(log *slog.Logger, err error) {
	if apperror.IsValidation(err) {
		log.Debug("operation rejected", "reason", err)
		return
	}

	log.Error("operation failed", "error", err)
}
