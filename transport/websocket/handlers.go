package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/renju-backend/internal/apperror"
)

func (that *Server) handleConnect(_ context.Context, c *client, _ *Message) (any, error) {
	return ConnectPayload{ConnectionID: c.id}, nil
}

func (that *Server) handleListRooms(ctx context.Context, _ *client, _ *Message) (any, error) {
	rooms, err := that.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

func (that *Server) handleOpenRoom(ctx context.Context, c *client, _ *Message) (any, error) {
	return that.rooms.OpenRoom(ctx, c.id)
}

func (that *Server) handleJoinRoom(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.JoinRoom(ctx, c.id, req.RoomID)
}

func (that *Server) handleToggleReady(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.ToggleReady(ctx, c.id, req.RoomID)
}

func (that *Server) handleLeaveRoom(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.LeaveRoom(ctx, c.id, req.RoomID)
}

func (that *Server) handleStartGame(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.StartGame(ctx, c.id, req.RoomID)
}

func (that *Server) handlePlaceMove(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := decode[MoveRequest](msg)
	if err != nil {
		return nil, err
	}

	if req.RoomID == "" || req.Row == nil || req.Col == nil {
		return nil, fmt.Errorf("%w: room_id, row and col are required", apperror.ErrInvalidPayload)
	}

	return that.rooms.PlaceMove(ctx, c.id, req.RoomID, *req.Row, *req.Col)
}

func (that *Server) handleSurrender(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.Surrender(ctx, c.id, req.RoomID)
}

func (that *Server) handleResetGame(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.ResetGame(ctx, c.id, req.RoomID)
}

func (that *Server) handleTimeout(ctx context.Context, c *client, msg *Message) (any, error) {
	req, err := roomRequest(msg)
	if err != nil {
		return nil, err
	}

	return that.rooms.Timeout(ctx, c.id, req.RoomID)
}

func roomRequest(msg *Message) (*RoomRequest, error) {
	req, err := decode[RoomRequest](msg)
	if err != nil {
		return nil, err
	}

	if req.RoomID == "" {
		return nil, fmt.Errorf("%w: room_id is required", apperror.ErrInvalidPayload)
	}

	return req, nil
}
