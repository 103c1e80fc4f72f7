package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/renju-backend/internal/apperror"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomRequest struct {
	RoomID string `json:"room_id"`
}

type MoveRequest struct {
	RoomID string `json:"room_id"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

type ConnectPayload struct {
	ConnectionID string `json:"connection_id"`
}

type ErrorPayload struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

func newErrorPayload(err error) ErrorPayload {
	payload := ErrorPayload{
		Error: err.Error(),
		Code:  apperror.Code(err),
	}

	var forbidden *apperror.ForbiddenMoveError
	if errors.As(err, &forbidden) {
		payload.Reason = forbidden.Reason
	}

	if !apperror.IsValidation(err) {
		payload.Error = "internal error"
	}

	return payload
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

func decode[T any](msg *Message) (*T, error) {
	var req T
	if len(msg.Payload) == 0 {
		return &req, nil
	}

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	return &req, nil
}
