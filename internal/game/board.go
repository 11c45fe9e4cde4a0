// internal/game/board.go
//
// Pure board operations for the Connect Four rules engine.
// Responsibilities:
//   - Drop: gravity placement into the lowest empty cell of a column.
//   - HasWin: scan the four line orientations for four in a row.
//   - Full: detect a board with no empty cells (draw condition).
//
// Notes:
//   - No I/O, no locking; callers own the Board they pass in. The match
//     serializes access, the bot works on scratch copies.
//   - Column indices are validated by the transport before they reach this
//     package; Drop indexes the grid directly and an out-of-range column is
//     a caller bug.

package game

import "errors"

// ErrColumnFull is returned by Drop when the column has no empty cell.
// Client-correctable: the caller may retry with a different column.
var ErrColumnFull = errors.New("column full")

// Drop places side's disc in the lowest empty cell of col and returns the
// landing row. The board is unchanged when ErrColumnFull is returned.
func Drop(b *Board, col int, side Side) (int, error) {
	for r := Rows - 1; r >= 0; r-- {
		if b[r][col] == Empty {
			b[r][col] = side.Mark()
			return r, nil
		}
	}
	return -1, ErrColumnFull
}

// HasWin reports whether side has four consecutive discs in any of the four
// orientations. Any winning line counts; scan order is not significant.
func HasWin(b *Board, side Side) bool {
	m := side.Mark()

	// horizontal
	for r := 0; r < Rows; r++ {
		for c := 0; c <= Cols-4; c++ {
			if b[r][c] == m && b[r][c+1] == m && b[r][c+2] == m && b[r][c+3] == m {
				return true
			}
		}
	}
	// vertical
	for c := 0; c < Cols; c++ {
		for r := 0; r <= Rows-4; r++ {
			if b[r][c] == m && b[r+1][c] == m && b[r+2][c] == m && b[r+3][c] == m {
				return true
			}
		}
	}
	// diagonal down-right
	for r := 0; r <= Rows-4; r++ {
		for c := 0; c <= Cols-4; c++ {
			if b[r][c] == m && b[r+1][c+1] == m && b[r+2][c+2] == m && b[r+3][c+3] == m {
				return true
			}
		}
	}
	// diagonal up-right
	for r := 3; r < Rows; r++ {
		for c := 0; c <= Cols-4; c++ {
			if b[r][c] == m && b[r-1][c+1] == m && b[r-2][c+2] == m && b[r-3][c+3] == m {
				return true
			}
		}
	}
	return false
}

// Full reports whether every cell is occupied.
func Full(b *Board) bool {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if b[r][c] == Empty {
				return false
			}
		}
	}
	return true
}
