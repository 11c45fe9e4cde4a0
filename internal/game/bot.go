// internal/game/bot.go
//
// Bot column selection for human-vs-bot matches.
// Strategy, in priority order:
//   1. Play an immediately winning column.
//   2. Block the opponent's immediately winning column.
//   3. Score every playable column (centre bias + chain extension) and pick
//      the best.
//
// All candidate scans run left to right, so the choice is deterministic for
// a given board. This is a single-ply heuristic, not a search; cost is
// bounded at 7 simulated drops per phase.

package game

import "errors"

// ErrUnplayable is returned when no column can accept a disc. Callers only
// invoke the bot while a legal move exists, so seeing this means an earlier
// invariant was broken (defensive/fatal, not a client error).
var ErrUnplayable = errors.New("no playable column")

// axis directions for chain scoring: horizontal, vertical, both diagonals.
var botDirs = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// ChooseColumn picks the column the bot plays on b. The board is never
// mutated; all simulation happens on scratch copies.
func ChooseColumn(b *Board, botSide, oppSide Side) (int, error) {
	// 1) win now if possible
	for c := 0; c < Cols; c++ {
		scratch := *b
		if _, err := Drop(&scratch, c, botSide); err != nil {
			continue
		}
		if HasWin(&scratch, botSide) {
			return c, nil
		}
	}

	// 2) block an opponent win
	for c := 0; c < Cols; c++ {
		scratch := *b
		if _, err := Drop(&scratch, c, oppSide); err != nil {
			continue
		}
		if HasWin(&scratch, oppSide) {
			return c, nil
		}
	}

	// 3) heuristic: centre preference plus chain extension in all four axes
	bestCol, bestScore := -1, 0
	for c := 0; c < Cols; c++ {
		scratch := *b
		r, err := Drop(&scratch, c, botSide)
		if err != nil {
			continue
		}
		score := (3 - abs(3-c)) * 2
		for _, d := range botDirs {
			score += chainLength(&scratch, r, c, d[0], d[1], botSide) * 2
		}
		if bestCol == -1 || score > bestScore {
			bestCol, bestScore = c, score
		}
	}
	if bestCol == -1 {
		return -1, ErrUnplayable
	}
	return bestCol, nil
}

// chainLength counts the contiguous run of side's discs through (r,c) along
// the (dr,dc) axis, including the disc at (r,c) itself. Both directions are
// walked, so a disc landing in the middle of a run counts the whole run.
func chainLength(b *Board, r, c, dr, dc int, side Side) int {
	m := side.Mark()
	n := 1
	for rr, cc := r+dr, c+dc; rr >= 0 && rr < Rows && cc >= 0 && cc < Cols && b[rr][cc] == m; rr, cc = rr+dr, cc+dc {
		n++
	}
	for rr, cc := r-dr, c-dc; rr >= 0 && rr < Rows && cc >= 0 && cc < Cols && b[rr][cc] == m; rr, cc = rr-dr, cc-dc {
		n++
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
