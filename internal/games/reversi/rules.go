// Package reversi implements 8x8 reversi: a placement must outflank at least
// one run of opposing pieces, which are flipped. A side with no legal
// placement passes; when neither side can move the larger piece count wins.
package reversi

import (
	"fmt"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// Type is the match type tag for reversi.
const Type board.MatchType = "reversi"

// Dimension is the board side length.
const Dimension = 8

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func init() {
	board.Register(Type, Rules{})
}

// Rules implements board.Rules for reversi.
type Rules struct{}

// Title returns the display name.
func (Rules) Title() string { return "Reversi" }

// Dimension returns the board side length.
func (Rules) Dimension() int { return Dimension }

// Sides returns Black and White.
func (Rules) Sides() (board.Player, board.Player) { return board.Black, board.White }

// Setup places the four centre pieces (white on d4/e5, black on d5/e4).
func (Rules) Setup(g *board.Grid) {
	mid := g.Dim() / 2
	g.SetAt(mid-1, mid-1, board.Black)
	g.SetAt(mid-1, mid, board.White)
	g.SetAt(mid, mid-1, board.White)
	g.SetAt(mid, mid, board.Black)
}

// Place puts the piece down and flips every outflanked run.
func (Rules) Place(g *board.Grid, m board.Move) error {
	row, col := m.Square.Row.Index(), m.Square.Column.Index()
	flips := Captures(g, row, col, m.Player)
	if len(flips) == 0 {
		return apperrors.InvalidMove(apperrors.ReasonNoCapture,
			fmt.Sprintf("%s at %s captures nothing", m.Player, m.Square))
	}
	g.SetAt(row, col, m.Player)
	for _, f := range flips {
		g.SetAt(f[0], f[1], m.Player)
	}
	return nil
}

// Result keeps the game running while someone can move. If only the mover
// can continue, the opponent passes.
func (Rules) Result(g *board.Grid, mover board.Player) board.Result {
	if HasLegalMove(g, mover.Other()) {
		return board.Result{Status: board.StatusRunning}
	}
	if HasLegalMove(g, mover) {
		return board.Result{Status: board.StatusRunning, Pass: true}
	}

	mine, theirs := g.Count(mover), g.Count(mover.Other())
	switch {
	case mine > theirs:
		return board.Result{Status: board.StatusWin, Winner: mover}
	case theirs > mine:
		return board.Result{Status: board.StatusWin, Winner: mover.Other()}
	default:
		return board.Result{Status: board.StatusDraw}
	}
}

// Captures returns the cells p would flip by placing at (row, col).
// An occupied target captures nothing.
func Captures(g *board.Grid, row, col int, p board.Player) [][2]int {
	if !g.InBounds(row, col) || g.At(row, col) != board.Empty {
		return nil
	}
	var flips [][2]int
	for _, d := range directions {
		var run [][2]int
		r, c := row+d[0], col+d[1]
		for g.InBounds(r, c) && g.At(r, c) == p.Other() {
			run = append(run, [2]int{r, c})
			r, c = r+d[0], c+d[1]
		}
		if len(run) > 0 && g.InBounds(r, c) && g.At(r, c) == p {
			flips = append(flips, run...)
		}
	}
	return flips
}

// HasLegalMove reports whether p has any capturing placement.
func HasLegalMove(g *board.Grid, p board.Player) bool {
	for r := 0; r < g.Dim(); r++ {
		for c := 0; c < g.Dim(); c++ {
			if len(Captures(g, r, c, p)) > 0 {
				return true
			}
		}
	}
	return false
}
