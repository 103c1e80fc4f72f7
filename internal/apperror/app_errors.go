package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrInvalidCell        = errors.New("cell is out of the board")
	ErrForbiddenMove      = errors.New("move is forbidden for black")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrAlreadyStarted     = errors.New("game is already started")
	ErrNotHost            = errors.New("only the host can do this")
	ErrNotMember          = errors.New("you are not in this room")
	ErrGuestNotReady      = errors.New("guest is not ready")
	ErrWrongPlayerCount   = errors.New("two players are required")
	ErrInvariantViolation = errors.New("room state is inconsistent")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrUnknownAction      = errors.New("unknown action")
)

// ForbiddenMoveError carries the renju rule a black placement broke.
type ForbiddenMoveError struct {
	Reason string
}

func (that *ForbiddenMoveError) Error() string {
	return fmt.Sprintf("%s: %s", ErrForbiddenMove, that.Reason)
}

func (that *ForbiddenMoveError) Is(target error) bool {
	return target == ErrForbiddenMove
}

var codes = []struct {
	err  error
	code string
}{
	{ErrGameFinished, "game_finished"},
	{ErrGameIsNotStarted, "game_not_started"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrCellOccupied, "cell_occupied"},
	{ErrInvalidCell, "invalid_cell"},
	{ErrForbiddenMove, "forbidden_move"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrRoomFull, "room_full"},
	{ErrAlreadyStarted, "already_started"},
	{ErrNotHost, "not_host"},
	{ErrNotMember, "not_member"},
	{ErrGuestNotReady, "guest_not_ready"},
	{ErrWrongPlayerCount, "wrong_player_count"},
	{ErrInvariantViolation, "invariant_violation"},
	{ErrInvalidPayload, "invalid_payload"},
	{ErrUnknownAction, "unknown_action"},
}

// Code maps an error to the stable code sent to clients.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// IsValidation reports whether err is a rejection the client caused.
func IsValidation(err error) bool {
	return Code(err) != "internal"
}
