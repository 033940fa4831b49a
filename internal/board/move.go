package board

// Move is one placement by a side. Type tags which match family the move
// belongs to; moves compare structurally.
type Move struct {
	Type   MatchType
	Player Player
	Square Square
}

// NewMove creates a move.
func NewMove(t MatchType, p Player, sq Square) Move {
	return Move{Type: t, Player: p, Square: sq}
}

// String returns the compact "<symbol><square>" form, e.g. "X3a".
func (m Move) String() string {
	return m.Player.Symbol() + m.Square.String()
}
