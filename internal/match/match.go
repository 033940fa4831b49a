// Package match implements the versioned multiplayer match aggregate. A
// Match is a value: every transition returns a fresh snapshot with the
// version bumped and leaves the receiver untouched.
package match

import (
	"fmt"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// Randomizer supplies the coin flips used when a match starts.
// *math/rand/v2.Rand satisfies it.
type Randomizer interface {
	IntN(n int) int
}

// Match is one played instance of a game between one or two users.
type Match struct {
	ID      ID
	Type    board.MatchType
	Board   board.Board
	Player1 UserID
	Player2 UserID // zero while waiting
	Version int64
	Winner  UserID // set only in StateWin
}

// Start creates a waiting match for the initiator. The initiator's side and
// the side that moves first are chosen independently at random.
func Start(id ID, initiator UserID, t board.MatchType, rnd Randomizer) (Match, error) {
	if initiator <= 0 {
		return Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid initiator id %d", initiator))
	}
	if id <= 0 {
		return Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid match id %d", id))
	}
	rules, err := board.Lookup(t)
	if err != nil {
		return Match{}, err
	}

	a, b := rules.Sides()
	side, first := a, a
	if rnd.IntN(2) == 1 {
		side = b
	}
	if rnd.IntN(2) == 1 {
		first = b
	}

	bd, err := board.New(t, side, first)
	if err != nil {
		return Match{}, err
	}
	return Match{
		ID:      id,
		Type:    t,
		Board:   bd,
		Player1: initiator,
		Version: 1,
	}, nil
}

// State derives the lifecycle tag from the player slots and the board.
func (m Match) State() State {
	if m.Player2 == 0 {
		return StateWaiting
	}
	switch m.Board.Status() {
	case board.StatusWin:
		return StateWin
	case board.StatusDraw:
		return StateDraw
	default:
		return StateRunning
	}
}

// Equal reports whether two snapshots are interchangeable: same match at the
// same version.
func (m Match) Equal(o Match) bool {
	return m.ID == o.ID && m.Version == o.Version
}

// IsParticipant reports whether u holds one of the slots.
func (m Match) IsParticipant(u UserID) bool {
	return u > 0 && (u == m.Player1 || u == m.Player2)
}

// Join seats the second user and starts the game.
func (m Match) Join(u UserID) (Match, error) {
	switch {
	case u <= 0:
		return Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid user id %d", u))
	case m.Player2 != 0:
		return Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("match %s already has two players", m.ID))
	case u == m.Player1:
		return Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			"cannot join your own match")
	}

	next := m
	next.Player2 = u
	next.Version++
	return next, nil
}

// Play applies a board move and resolves the winning user if the move ends
// the game.
func (m Match) Play(mv board.Move) (Match, error) {
	if m.Player2 == 0 {
		return Match{}, apperrors.New(apperrors.CodeInvalidState,
			fmt.Sprintf("match %s is still waiting for an opponent", m.ID))
	}
	bd, err := m.Board.Play(mv)
	if err != nil {
		return Match{}, err
	}

	next := m
	next.Board = bd
	next.Version++
	next.Winner = 0
	if next.State() == StateWin {
		if bd.Winner() == bd.Player1() {
			next.Winner = m.Player1
		} else {
			next.Winner = m.Player2
		}
	}
	return next, nil
}

// Forfeit ends the match in favour of u's opponent.
func (m Match) Forfeit(u UserID) (Match, error) {
	if u <= 0 {
		return Match{}, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("invalid user id %d", u))
	}
	side, err := m.PlayerType(u)
	if err != nil {
		return Match{}, err
	}
	other, err := m.OtherPlayer(u)
	if err != nil {
		return Match{}, err
	}
	bd, err := m.Board.Forfeit(side)
	if err != nil {
		return Match{}, err
	}

	next := m
	next.Board = bd
	next.Version++
	next.Winner = other
	return next, nil
}

// PlayerType returns the in-board side held by u.
func (m Match) PlayerType(u UserID) (board.Player, error) {
	switch {
	case u > 0 && u == m.Player1:
		return m.Board.Player1(), nil
	case u > 0 && u == m.Player2:
		return m.Board.Player2(), nil
	default:
		return board.Empty, notParticipant(m.ID, u)
	}
}

// IsMyTurn reports whether the board expects u's side to move next.
func (m Match) IsMyTurn(u UserID) (bool, error) {
	side, err := m.PlayerType(u)
	if err != nil {
		return false, err
	}
	return m.Board.Turn() == side, nil
}

// OtherPlayer returns u's opponent. Both slots must be filled.
func (m Match) OtherPlayer(u UserID) (UserID, error) {
	if !m.IsParticipant(u) {
		return 0, notParticipant(m.ID, u)
	}
	if m.Player2 == 0 {
		return 0, apperrors.New(apperrors.CodeInvalidArgument,
			fmt.Sprintf("match %s has no second player", m.ID))
	}
	if u == m.Player1 {
		return m.Player2, nil
	}
	return m.Player1, nil
}

// CurrentUser returns the user whose side is to move, or zero if the match
// is not running.
func (m Match) CurrentUser() UserID {
	if m.State() != StateRunning {
		return 0
	}
	if m.Board.Turn() == m.Board.Player1() {
		return m.Player1
	}
	return m.Player2
}

func notParticipant(id ID, u UserID) error {
	return apperrors.New(apperrors.CodeInvalidArgument,
		fmt.Sprintf("user %d is not a participant of match %s", u, id))
}
