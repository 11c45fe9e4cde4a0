// internal/game/types.go
//
// Core type definitions for the Connect Four rules engine.
// Defines:
//   - Side: one of the two fixed seats in a match ("A"/"B").
//   - Cell: contents of one board square (empty or a side's disc).
//   - Board: the fixed 6x7 grid, value type (copying a Board copies the grid).

package game

// Board dimensions. Row 0 is the top of the grid; discs land bottom-up.
const (
	Rows = 6
	Cols = 7
)

// Side identifies a seat in a match. Side A always moves first.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Cell is the contents of a single board square: empty, or the mark of the
// side that played there. Marks serialize as "A"/"B", empty cells as "".
type Cell string

// Empty is the zero Cell.
const Empty Cell = ""

// Mark returns the cell value for a side's disc.
func (s Side) Mark() Cell { return Cell(s) }

// Board is the 6x7 grid. It is a value type: assignment copies the whole
// grid, which is what the bot relies on for scratch-copy lookahead.
type Board [Rows][Cols]Cell
