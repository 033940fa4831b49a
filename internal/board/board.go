package board

import (
	"fmt"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// Status tags which board variant a Board value is.
type Status uint8

const (
	StatusRunning Status = iota // Moves are still accepted
	StatusWin                   // Terminal, Winner is set
	StatusDraw                  // Terminal, no winner
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusWin:
		return "win"
	case StatusDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusWin || s == StatusDraw
}

// Board is an immutable game board. Every transition returns a new Board and
// leaves the receiver untouched.
type Board struct {
	matchType MatchType
	status    Status
	grid      *Grid
	moves     []Move
	turn      Player
	player1   Player
	player2   Player
	winner    Player
}

// New creates a running board for t. player1 is the side held by the match
// initiator; first is the side that moves first.
func New(t MatchType, player1, first Player) (Board, error) {
	rules, err := Lookup(t)
	if err != nil {
		return Board{}, err
	}
	a, b := rules.Sides()
	if player1 != a && player1 != b {
		return Board{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("%s is not a side of %s", player1, t))
	}
	if first != a && first != b {
		return Board{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("%s is not a side of %s", first, t))
	}

	g := NewGrid(rules.Dimension())
	rules.Setup(g)

	return Board{
		matchType: t,
		status:    StatusRunning,
		grid:      g,
		turn:      first,
		player1:   player1,
		player2:   player1.Other(),
	}, nil
}

// Type returns the match type this board plays.
func (b Board) Type() MatchType { return b.matchType }

// Status returns the board variant.
func (b Board) Status() Status { return b.status }

// Turn returns the side to move next.
func (b Board) Turn() Player { return b.turn }

// Player1 returns the initiator's side.
func (b Board) Player1() Player { return b.player1 }

// Player2 returns the joiner's side.
func (b Board) Player2() Player { return b.player2 }

// Winner returns the winning side, or Empty unless Status is StatusWin.
func (b Board) Winner() Player { return b.winner }

// Dim returns the board side length.
func (b Board) Dim() int {
	if b.grid == nil {
		return 0
	}
	return b.grid.dim
}

// IsZero reports whether b is the zero Board.
func (b Board) IsZero() bool { return b.grid == nil }

// Moves returns a copy of the accepted moves in order.
func (b Board) Moves() []Move {
	out := make([]Move, len(b.moves))
	copy(out, b.moves)
	return out
}

// Positions returns every square with its occupant (dim² entries).
func (b Board) Positions() []Position {
	if b.grid == nil {
		return nil
	}
	return b.grid.Positions()
}

// Get returns the occupant of sq; ok is false when the square is empty or
// not on this board.
func (b Board) Get(sq Square) (Player, bool) {
	if b.grid == nil || sq.Dim() != b.grid.dim {
		return Empty, false
	}
	p := b.grid.Get(sq)
	return p, p != Empty
}

// Count returns how many squares p occupies.
func (b Board) Count(p Player) int {
	if b.grid == nil {
		return 0
	}
	return b.grid.Count(p)
}

// Play validates and applies a move, returning the resulting board.
func (b Board) Play(m Move) (Board, error) {
	if b.status.Terminal() {
		return Board{}, apperrors.New(apperrors.CodeInvalidState,
			fmt.Sprintf("board is finished (%s)", b.status))
	}
	rules, err := Lookup(b.matchType)
	if err != nil {
		return Board{}, err
	}
	if m.Type != b.matchType {
		return Board{}, apperrors.InvalidMove(apperrors.ReasonWrongType,
			fmt.Sprintf("%s move on a %s board", m.Type, b.matchType))
	}
	if m.Square.Dim() != b.grid.dim {
		return Board{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("square %s is not on a %dx%d board", m.Square, b.grid.dim, b.grid.dim))
	}
	if m.Player != b.turn {
		return Board{}, apperrors.InvalidMove(apperrors.ReasonNotYourTurn,
			fmt.Sprintf("it is %s's turn", b.turn))
	}
	if b.grid.Get(m.Square) != Empty {
		return Board{}, apperrors.InvalidMove(apperrors.ReasonOccupied,
			fmt.Sprintf("square %s is occupied", m.Square))
	}
	if len(b.moves) >= b.grid.dim*b.grid.dim {
		return Board{}, apperrors.New(apperrors.CodeInvalidState, "no moves left")
	}

	g := b.grid.Clone()
	if err := rules.Place(g, m); err != nil {
		return Board{}, err
	}
	res := rules.Result(g, m.Player)

	next := b
	next.grid = g
	next.moves = append(b.Moves(), m)
	next.turn = m.Player.Other()
	if res.Pass && res.Status == StatusRunning {
		next.turn = m.Player
	}
	next.status = res.Status
	next.winner = Empty
	if res.Status == StatusWin {
		next.winner = res.Winner
	}
	return next, nil
}

// Forfeit ends the game in favour of p's opponent, whoever's turn it is.
func (b Board) Forfeit(p Player) (Board, error) {
	if b.status.Terminal() {
		return Board{}, apperrors.New(apperrors.CodeInvalidState,
			fmt.Sprintf("board is finished (%s)", b.status))
	}
	if p != b.player1 && p != b.player2 {
		return Board{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("%s is not playing on this board", p))
	}

	next := b
	next.moves = b.Moves()
	next.status = StatusWin
	next.winner = p.Other()
	return next, nil
}
