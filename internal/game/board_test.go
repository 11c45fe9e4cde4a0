package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropFillsBottomUp(t *testing.T) {
	var b Board
	for i := 0; i < Rows; i++ {
		row, err := Drop(&b, 3, SideA)
		require.NoError(t, err)
		assert.Equal(t, Rows-1-i, row, "disc %d should land on the lowest empty row", i)
	}
	// column is contiguous from the bottom
	for r := 0; r < Rows; r++ {
		assert.Equal(t, SideA.Mark(), b[r][3])
	}
}

func TestDropColumnFullLeavesBoardUnchanged(t *testing.T) {
	var b Board
	for i := 0; i < Rows; i++ {
		_, err := Drop(&b, 0, SideB)
		require.NoError(t, err)
	}
	before := b
	row, err := Drop(&b, 0, SideA)
	require.ErrorIs(t, err, ErrColumnFull)
	assert.Equal(t, -1, row)
	assert.Equal(t, before, b)
}

func TestDropKeepsColumnsContiguous(t *testing.T) {
	var b Board
	cols := []int{2, 2, 5, 2, 0, 5, 2}
	for i, c := range cols {
		side := SideA
		if i%2 == 1 {
			side = SideB
		}
		_, err := Drop(&b, c, side)
		require.NoError(t, err)
	}
	for c := 0; c < Cols; c++ {
		seen := false
		for r := 0; r < Rows; r++ {
			if b[r][c] != Empty {
				seen = true
			} else {
				assert.False(t, seen, "gap below a disc in column %d", c)
			}
		}
	}
}

func TestHasWinHorizontal(t *testing.T) {
	var b Board
	for c := 1; c <= 4; c++ {
		b[5][c] = SideA.Mark()
	}
	assert.True(t, HasWin(&b, SideA))
	assert.False(t, HasWin(&b, SideB))
}

func TestHasWinVertical(t *testing.T) {
	var b Board
	for r := 2; r <= 5; r++ {
		b[r][6] = SideB.Mark()
	}
	assert.True(t, HasWin(&b, SideB))
	assert.False(t, HasWin(&b, SideA))
}

func TestHasWinDiagonalDown(t *testing.T) {
	var b Board
	for i := 0; i < 4; i++ {
		b[1+i][2+i] = SideA.Mark()
	}
	assert.True(t, HasWin(&b, SideA))
	assert.False(t, HasWin(&b, SideB))
}

func TestHasWinDiagonalUp(t *testing.T) {
	var b Board
	for i := 0; i < 4; i++ {
		b[5-i][i] = SideB.Mark()
	}
	assert.True(t, HasWin(&b, SideB))
	assert.False(t, HasWin(&b, SideA))
}

func TestHasWinRejectsThreeInARow(t *testing.T) {
	var b Board
	for c := 0; c < 3; c++ {
		b[5][c] = SideA.Mark()
	}
	assert.False(t, HasWin(&b, SideA))
}

func TestFullBoardWithoutWinner(t *testing.T) {
	// Striped fill with no four in a row anywhere: columns come in pairs of
	// alternating stacks, offset every two columns.
	var b Board
	for c := 0; c < Cols; c++ {
		offset := 0
		if c == 2 || c == 3 || c == 6 {
			offset = 1
		}
		for r := 0; r < Rows; r++ {
			if (r+offset)%2 == 1 {
				b[r][c] = SideA.Mark()
			} else {
				b[r][c] = SideB.Mark()
			}
		}
	}
	assert.True(t, Full(&b))
	assert.False(t, HasWin(&b, SideA))
	assert.False(t, HasWin(&b, SideB))
}

func TestFull(t *testing.T) {
	var b Board
	assert.False(t, Full(&b))
	for c := 0; c < Cols; c++ {
		for r := 0; r < Rows; r++ {
			b[r][c] = SideA.Mark()
		}
	}
	assert.True(t, Full(&b))
	b[0][6] = Empty
	assert.False(t, Full(&b))
}
