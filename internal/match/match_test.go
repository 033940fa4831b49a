package match

import (
	"testing"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	"github.com/vovakirdan/turn-arena/internal/games/reversi"
	"github.com/vovakirdan/turn-arena/internal/games/tictactoe"
)

// flips returns a Randomizer that yields the given values in order.
type flips []int

func (f *flips) IntN(n int) int {
	if len(*f) == 0 {
		return 0
	}
	v := (*f)[0]
	*f = (*f)[1:]
	return v % n
}

func startTTT(t *testing.T, side, first int) Match {
	t.Helper()
	rnd := flips{side, first}
	m, err := Start(42, 1, tictactoe.Type, &rnd)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return m
}

func ttt(t *testing.T, p board.Player, s string) board.Move {
	t.Helper()
	mv, err := board.ParseMove(tictactoe.Type, p.String(), s)
	if err != nil {
		t.Fatalf("ParseMove(%s, %s) failed: %v", p, s, err)
	}
	return mv
}

func TestStart(t *testing.T) {
	m := startTTT(t, 1, 0)

	if m.State() != StateWaiting {
		t.Errorf("State() = %s, want waiting", m.State())
	}
	if m.Version != 1 || m.Player2 != 0 || m.Player1 != 1 {
		t.Errorf("Start() = %+v, want version 1, player1 1, no player2", m)
	}
	if side, _ := m.PlayerType(1); side != board.Circle {
		t.Errorf("PlayerType(1) = %s, want circle", side)
	}
	if m.Board.Turn() != board.Cross {
		t.Errorf("Turn() = %s, want cross", m.Board.Turn())
	}

	rnd := flips{}
	if _, err := Start(1, 0, tictactoe.Type, &rnd); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("Start(initiator 0) error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := Start(1, 1, "chess", &rnd); !apperrors.IsCode(err, apperrors.CodeUnknownMatchType) {
		t.Errorf("Start(chess) error = %v, want UNKNOWN_MATCH_TYPE", err)
	}
}

func TestStartReversiSides(t *testing.T) {
	rnd := flips{0, 1}
	m, err := Start(7, 3, reversi.Type, &rnd)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if side, _ := m.PlayerType(3); side != board.Black {
		t.Errorf("PlayerType(3) = %s, want black", side)
	}
	if m.Board.Turn() != board.White {
		t.Errorf("Turn() = %s, want white", m.Board.Turn())
	}
}

func TestJoin(t *testing.T) {
	m := startTTT(t, 0, 0)

	tests := []struct {
		name string
		user UserID
	}{
		{"zero id", 0},
		{"negative id", -3},
		{"own match", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Join(tt.user); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
				t.Errorf("Join(%d) error = %v, want INVALID_ARGUMENT", tt.user, err)
			}
		})
	}

	joined, err := m.Join(2)
	if err != nil {
		t.Fatalf("Join(2) failed: %v", err)
	}
	if joined.State() != StateRunning || joined.Version != 2 {
		t.Errorf("Join() = state %s version %d, want running 2", joined.State(), joined.Version)
	}
	if m.Player2 != 0 {
		t.Error("Join() mutated the receiver")
	}
	if _, err := joined.Join(3); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("Join() on full match error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestPlayScenario(t *testing.T) {
	m := startTTT(t, 0, 0) // user 1 is cross and moves first
	m, err := m.Join(2)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}

	seq := []struct {
		p board.Player
		s string
	}{
		{board.Cross, "3a"},
		{board.Circle, "2a"},
		{board.Cross, "3b"},
		{board.Circle, "2b"},
		{board.Cross, "3c"},
	}
	for i, step := range seq {
		before := m.Version
		if m.Board.Turn() != step.p {
			t.Fatalf("step %d: Turn() = %s, want %s", i, m.Board.Turn(), step.p)
		}
		m, err = m.Play(ttt(t, step.p, step.s))
		if err != nil {
			t.Fatalf("step %d: Play(%s) failed: %v", i, step.s, err)
		}
		if m.Version != before+1 {
			t.Errorf("step %d: Version = %d, want %d", i, m.Version, before+1)
		}
	}

	if m.State() != StateWin || m.Winner != 1 {
		t.Fatalf("final = state %s winner %d, want win for 1", m.State(), m.Winner)
	}
	if m.Version != 7 {
		t.Errorf("Version = %d, want 7", m.Version)
	}

	if _, err := m.Play(ttt(t, board.Circle, "1a")); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("Play() on finished match error = %v, want INVALID_STATE", err)
	}
	if _, err := m.Forfeit(2); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("Forfeit() on finished match error = %v, want INVALID_STATE", err)
	}
}

func TestPlayWinnerIsSecondUser(t *testing.T) {
	m := startTTT(t, 1, 0) // user 1 is circle, cross (user 2) moves first
	m, _ = m.Join(2)

	for _, step := range []struct {
		p board.Player
		s string
	}{
		{board.Cross, "1a"},
		{board.Circle, "3a"},
		{board.Cross, "1b"},
		{board.Circle, "3b"},
		{board.Cross, "1c"},
	} {
		var err error
		if m, err = m.Play(ttt(t, step.p, step.s)); err != nil {
			t.Fatalf("Play(%s) failed: %v", step.s, err)
		}
	}
	if m.Winner != 2 {
		t.Errorf("Winner = %d, want 2", m.Winner)
	}
}

func TestPlayWhileWaiting(t *testing.T) {
	m := startTTT(t, 0, 0)
	if _, err := m.Play(ttt(t, board.Cross, "3a")); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("Play() while waiting error = %v, want INVALID_STATE", err)
	}
}

func TestPlayRejectedKeepsVersion(t *testing.T) {
	m := startTTT(t, 0, 0)
	m, _ = m.Join(2)

	if _, err := m.Play(ttt(t, board.Circle, "3a")); !apperrors.IsCode(err, apperrors.CodeInvalidMove) {
		t.Fatalf("Play() out of turn error = %v, want INVALID_MOVE", err)
	}
	if m.Version != 2 {
		t.Errorf("Version = %d after rejected move, want 2", m.Version)
	}
}

func TestForfeit(t *testing.T) {
	waiting := startTTT(t, 0, 0)
	if _, err := waiting.Forfeit(1); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("Forfeit() while waiting error = %v, want INVALID_ARGUMENT", err)
	}

	m, _ := waiting.Join(2)
	if _, err := m.Forfeit(0); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("Forfeit(0) error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := m.Forfeit(9); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("Forfeit(stranger) error = %v, want INVALID_ARGUMENT", err)
	}

	// user 2 forfeits although it is user 1's turn
	done, err := m.Forfeit(2)
	if err != nil {
		t.Fatalf("Forfeit(2) failed: %v", err)
	}
	if done.State() != StateWin || done.Winner != 1 || done.Version != 3 {
		t.Errorf("Forfeit() = state %s winner %d version %d, want win 1 3",
			done.State(), done.Winner, done.Version)
	}
}

func TestParticipantQueries(t *testing.T) {
	m := startTTT(t, 0, 1) // user 1 cross, circle moves first
	if _, err := m.OtherPlayer(1); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("OtherPlayer() while waiting error = %v, want INVALID_ARGUMENT", err)
	}
	m, _ = m.Join(2)

	if mine, _ := m.IsMyTurn(2); !mine {
		t.Error("IsMyTurn(2) = false, want true")
	}
	if mine, _ := m.IsMyTurn(1); mine {
		t.Error("IsMyTurn(1) = true, want false")
	}
	if _, err := m.IsMyTurn(5); !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Errorf("IsMyTurn(5) error = %v, want INVALID_ARGUMENT", err)
	}
	if other, _ := m.OtherPlayer(2); other != 1 {
		t.Errorf("OtherPlayer(2) = %d, want 1", other)
	}
	if m.CurrentUser() != 2 {
		t.Errorf("CurrentUser() = %d, want 2", m.CurrentUser())
	}
}

func TestEqual(t *testing.T) {
	m := startTTT(t, 0, 0)
	joined, _ := m.Join(2)

	if !m.Equal(m) {
		t.Error("snapshot should equal itself")
	}
	if m.Equal(joined) {
		t.Error("snapshots at different versions should differ")
	}
}

func TestParseIDs(t *testing.T) {
	if id, err := ParseID("17"); err != nil || id != 17 {
		t.Errorf("ParseID(17) = %d, %v", id, err)
	}
	for _, s := range []string{"", "0", "-1", "x"} {
		if _, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) should fail", s)
		}
		if _, err := ParseUserID(s); err == nil {
			t.Errorf("ParseUserID(%q) should fail", s)
		}
	}
}
