package entity

const BoardSize = 15

// Color is a stone color. The zero value marks an empty cell.
type Color string

const (
	NoColor Color = ""
	Black   Color = "black"
	White   Color = "white"
)

// Opponent returns the other stone color.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return NoColor
	}
}

func (c Color) IsValid() bool {
	return c == Black || c == White
}

type Board [BoardSize][BoardSize]Color

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// At returns the color at the cell, or NoColor when the cell is off the board.
func (that *Board) At(row, col int) Color {
	if !InBounds(row, col) {
		return NoColor
	}
	return that[row][col]
}

func (that *Board) IsEmpty(row, col int) bool {
	return InBounds(row, col) && that[row][col] == NoColor
}

// Stones counts placed stones of both colors.
func (that *Board) Stones() int {
	var n int
	for row := range that {
		for col := range that[row] {
			if that[row][col] != NoColor {
				n++
			}
		}
	}
	return n
}
