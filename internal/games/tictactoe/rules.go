// Package tictactoe implements the classic 3x3 rules: a side wins by filling
// a full row, column or diagonal; a full board with no line is a draw.
package tictactoe

import "github.com/vovakirdan/turn-arena/internal/board"

// Type is the match type tag for tic-tac-toe.
const Type board.MatchType = "tictactoe"

// Dimension is the board side length.
const Dimension = 3

func init() {
	board.Register(Type, Rules{})
}

// Rules implements board.Rules for tic-tac-toe.
type Rules struct{}

// Title returns the display name.
func (Rules) Title() string { return "Tic-Tac-Toe" }

// Dimension returns the board side length.
func (Rules) Dimension() int { return Dimension }

// Sides returns Cross and Circle.
func (Rules) Sides() (board.Player, board.Player) { return board.Cross, board.Circle }

// Setup leaves the board empty.
func (Rules) Setup(*board.Grid) {}

// Place puts the mover's mark on the target square.
func (Rules) Place(g *board.Grid, m board.Move) error {
	g.Set(m.Square, m.Player)
	return nil
}

// Result reports a win when the mover completed a line, a draw when the
// board is full, and running otherwise.
func (Rules) Result(g *board.Grid, mover board.Player) board.Result {
	if HasLine(g, mover) {
		return board.Result{Status: board.StatusWin, Winner: mover}
	}
	if g.Full() {
		return board.Result{Status: board.StatusDraw}
	}
	return board.Result{Status: board.StatusRunning}
}

// HasLine reports whether p occupies every square of some row, column or
// diagonal of the grid.
func HasLine(g *board.Grid, p board.Player) bool {
	n := g.Dim()
	diag, anti := true, true
	for i := 0; i < n; i++ {
		row, col := true, true
		for j := 0; j < n; j++ {
			row = row && g.At(i, j) == p
			col = col && g.At(j, i) == p
		}
		if row || col {
			return true
		}
		diag = diag && g.At(i, i) == p
		anti = anti && g.At(i, n-1-i) == p
	}
	return diag || anti
}
