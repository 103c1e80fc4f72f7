package renju

import (
	"fmt"

	"github.com/rocketscienceinc/renju-backend/internal/apperror"
	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

// MakeMove validates and applies a placement. On a win the session is concluded,
// otherwise the turn passes to the opponent.
func MakeMove(session *entity.GameSession, color entity.Color, row, col int) (*entity.Move, error) {
	if err := session.ConfirmInProgress(); err != nil {
		return nil, err
	}

	if err := validateMove(session, color, row, col); err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	session.Board[row][col] = color
	move := entity.Move{Row: row, Col: col, Color: color, Seq: len(session.Moves) + 1}
	session.Moves = append(session.Moves, move)

	if CheckWin(&session.Board, row, col, color) {
		session.Conclude(color)
	} else {
		session.Turn = color.Opponent()
	}

	return &move, nil
}

func validateMove(session *entity.GameSession, color entity.Color, row, col int) error {
	if !entity.InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, row, col)
	}

	if session.Turn != color {
		return apperror.ErrNotYourTurn
	}

	if !session.Board.IsEmpty(row, col) {
		return apperror.ErrCellOccupied
	}

	if verdict := CheckForbidden(&session.Board, row, col, color); verdict.Forbidden {
		return &apperror.ForbiddenMoveError{Reason: string(verdict.Reason)}
	}

	return nil
}

// Surrender concludes the game in favour of the loser's opponent.
func Surrender(session *entity.GameSession, loser entity.Color) error {
	if err := session.ConfirmInProgress(); err != nil {
		return err
	}

	session.Conclude(loser.Opponent())

	return nil
}

// PassTurn hands the turn over without a stone, as on a clock timeout.
func PassTurn(session *entity.GameSession, color entity.Color) error {
	if err := session.ConfirmInProgress(); err != nil {
		return err
	}

	if session.Turn != color {
		return apperror.ErrNotYourTurn
	}

	session.Turn = color.Opponent()

	return nil
}
