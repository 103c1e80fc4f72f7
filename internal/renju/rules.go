package renju

import (
	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

const (
	winLength      = 5
	overlineLength = 6
)

type Reason string

const (
	ReasonOverline    Reason = "overline"
	ReasonDoubleThree Reason = "double-three"
	ReasonDoubleFour  Reason = "double-four"
)

// Verdict is the outcome of a forbidden-move check.
type Verdict struct {
	Forbidden bool   `json:"forbidden"`
	Reason    Reason `json:"reason,omitempty"`
}

// axes are horizontal, vertical, diagonal and anti-diagonal.
var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

type pattern struct {
	length int
	open   bool
}

// CheckWin reports whether the stone at (row, col) completes a line of five or more.
// The stone must already be on the board.
func CheckWin(board *entity.Board, row, col int, color entity.Color) bool {
	if !color.IsValid() {
		return false
	}

	for _, axis := range axes {
		forward := countFrom(board, row, col, axis[0], axis[1], color)
		backward := countFrom(board, row, col, -axis[0], -axis[1], color)

		if forward+backward-1 >= winLength {
			return true
		}
	}

	return false
}

// CheckForbidden evaluates a black placement at an empty cell against the
// overline, double-three and double-four restrictions, in that order.
// Other colors and unplayable cells are reported legal.
func CheckForbidden(board *entity.Board, row, col int, color entity.Color) Verdict {
	if color != entity.Black || !board.IsEmpty(row, col) {
		return Verdict{}
	}

	if isOverline(board, row, col, color) {
		return Verdict{Forbidden: true, Reason: ReasonOverline}
	}

	trial := *board
	trial[row][col] = color

	var threes, fours int
	for _, axis := range axes {
		p := bestPattern(&trial, row, col, axis[0], axis[1], color)
		if !p.open {
			continue
		}

		switch p.length {
		case 3:
			threes++
		case 4:
			fours++
		}
	}

	switch {
	case threes >= 2:
		return Verdict{Forbidden: true, Reason: ReasonDoubleThree}
	case fours >= 2:
		return Verdict{Forbidden: true, Reason: ReasonDoubleFour}
	default:
		return Verdict{}
	}
}

// isOverline counts contiguous stones on each axis as if the stone were placed.
func isOverline(board *entity.Board, row, col int, color entity.Color) bool {
	for _, axis := range axes {
		forward := countBeyond(board, row, col, axis[0], axis[1], color)
		backward := countBeyond(board, row, col, -axis[0], -axis[1], color)

		if forward+backward+1 >= overlineLength {
			return true
		}
	}

	return false
}

// bestPattern picks the longest of the contiguous run through the origin and
// the two runs that bridge a single empty cell next to it. Ties keep the earlier candidate.
func bestPattern(board *entity.Board, row, col, dr, dc int, color entity.Color) pattern {
	front := countBeyond(board, row, col, dr, dc, color)
	back := countBeyond(board, row, col, -dr, -dc, color)

	best := pattern{
		length: front + back + 1,
		open: board.IsEmpty(row+(front+1)*dr, col+(front+1)*dc) &&
			board.IsEmpty(row-(back+1)*dr, col-(back+1)*dc),
	}

	if p, ok := gapPattern(board, row, col, dr, dc, back, color); ok && p.length > best.length {
		best = p
	}

	if p, ok := gapPattern(board, row, col, -dr, -dc, front, color); ok && p.length > best.length {
		best = p
	}

	return best
}

// gapPattern measures the run that continues past an empty cell in the (dr, dc)
// direction. behind is the run length on the opposite side of the origin.
func gapPattern(board *entity.Board, row, col, dr, dc, behind int, color entity.Color) (pattern, bool) {
	if !board.IsEmpty(row+dr, col+dc) {
		return pattern{}, false
	}

	stoneRow, stoneCol := row+2*dr, col+2*dc
	if board.At(stoneRow, stoneCol) != color {
		return pattern{}, false
	}

	beyond := countBeyond(board, stoneRow, stoneCol, dr, dc, color)

	return pattern{
		length: 1 + behind + 1 + beyond,
		open: board.IsEmpty(stoneRow+(beyond+1)*dr, stoneCol+(beyond+1)*dc) &&
			board.IsEmpty(row-(behind+1)*dr, col-(behind+1)*dc),
	}, true
}

// countFrom counts same-color stones starting at the origin itself.
func countFrom(board *entity.Board, row, col, dr, dc int, color entity.Color) int {
	var n int
	for entity.InBounds(row, col) && board[row][col] == color {
		n++
		row, col = row+dr, col+dc
	}
	return n
}

// countBeyond counts same-color stones starting next to the origin.
func countBeyond(board *entity.Board, row, col, dr, dc int, color entity.Color) int {
	return countFrom(board, row+dr, col+dc, dr, dc, color)
}
