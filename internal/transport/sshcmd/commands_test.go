package sshcmd

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	_ "github.com/vovakirdan/turn-arena/internal/games/reversi"
	_ "github.com/vovakirdan/turn-arena/internal/games/tictactoe"
	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
	"github.com/vovakirdan/turn-arena/internal/storage"
)

// zeroRand gives the initiator side a and lets side a move first.
type zeroRand struct{}

func (zeroRand) IntN(int) int { return 0 }

func newInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	store, err := storage.Open(storage.MemoryPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var ids atomic.Int64
	svc := multiplayer.NewService(multiplayer.DefaultServiceConfig(), store, multiplayer.NopNotifier{}, log.New(io.Discard),
		multiplayer.WithRandomizer(zeroRand{}),
		multiplayer.WithIDGenerator(func() match.ID { return match.ID(ids.Add(1)) }),
	)
	t.Cleanup(svc.Stop)
	return NewInterpreter(svc)
}

func mustRun(t *testing.T, in *Interpreter, user match.UserID, line string) string {
	t.Helper()
	out, _, err := in.Execute(context.Background(), user, line)
	if err != nil {
		t.Fatalf("Execute(%d, %q) failed: %v", user, line, err)
	}
	return out
}

func TestInterpreterGame(t *testing.T) {
	in := newInterpreter(t)

	if out := mustRun(t, in, 1, "enter tictactoe"); !strings.Contains(out, "waiting for an opponent") {
		t.Errorf("enter output = %q", out)
	}
	if out := mustRun(t, in, 2, "enter tictactoe"); !strings.Contains(out, "waiting for 1 to move") {
		t.Errorf("join output = %q", out)
	}

	// X: 3a 3b 3c, O: 2a 2b
	moves := []struct {
		user match.UserID
		line string
	}{
		{1, "play 1 3a 2"},
		{2, "play 1 2a 3"},
		{1, "play 1 3b 4"},
		{2, "play 1 2b 5"},
	}
	for _, m := range moves {
		mustRun(t, in, m.user, m.line)
	}
	out := mustRun(t, in, 1, "play 1 3c 6")
	if !strings.Contains(out, "you won") {
		t.Errorf("winning move output = %q", out)
	}
	if out := mustRun(t, in, 2, "show 1"); !strings.Contains(out, "winner: 1") {
		t.Errorf("show output = %q", out)
	}
	if out := mustRun(t, in, 1, "show"); !strings.Contains(out, "no active match") {
		t.Errorf("show without active match = %q", out)
	}

	stats := mustRun(t, in, 2, "stats")
	if !strings.Contains(stats, "tictactoe") || !strings.Contains(stats, "reversi") {
		t.Errorf("stats output = %q", stats)
	}
}

func TestInterpreterErrors(t *testing.T) {
	in := newInterpreter(t)
	mustRun(t, in, 1, "enter tictactoe")
	mustRun(t, in, 2, "enter tictactoe")

	tests := []struct {
		name string
		user match.UserID
		line string
		code apperrors.Code
	}{
		{"unknown command", 1, "dance", apperrors.CodeInvalidArgument},
		{"missing args", 1, "play 1", apperrors.CodeInvalidArgument},
		{"bad id", 1, "show abc", apperrors.CodeInvalidArgument},
		{"unknown type", 3, "enter chess", apperrors.CodeUnknownMatchType},
		{"already in match", 1, "enter reversi", apperrors.CodeUserAlreadyInMatch},
		{"not found", 1, "show 99", apperrors.CodeMatchNotFound},
		{"stale version", 1, "play 1 3a 1", apperrors.CodeVersionMismatch},
		{"not your turn", 2, "play 1 3a 2", apperrors.CodeInvalidMove},
		{"bad square", 1, "play 1 9z 2", apperrors.CodeInvalidArgument},
		{"outsider", 3, "play 1 3a 2", apperrors.CodeUserNotInThisMatch},
		{"cancel running", 1, "cancel 1", apperrors.CodeMatchNotInWaitingState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := in.Execute(context.Background(), tt.user, tt.line)
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("Execute(%q) error = %v (code %s), want %s", tt.line, err, got, tt.code)
			}
		})
	}
}

func TestInterpreterCancelAndForfeit(t *testing.T) {
	in := newInterpreter(t)

	mustRun(t, in, 1, "enter reversi")
	if out := mustRun(t, in, 1, "cancel 1"); !strings.Contains(out, "cancelled") {
		t.Errorf("cancel output = %q", out)
	}

	mustRun(t, in, 1, "enter reversi")
	mustRun(t, in, 2, "enter reversi")
	if out := mustRun(t, in, 1, "forfeit 2"); !strings.Contains(out, "winner: 2") {
		t.Errorf("forfeit output = %q", out)
	}
}

func TestInterpreterMisc(t *testing.T) {
	in := newInterpreter(t)

	if out := mustRun(t, in, 1, "   "); out != "" {
		t.Errorf("blank line output = %q", out)
	}
	if out := mustRun(t, in, 1, "help"); !strings.Contains(out, "play <id> <square> <version>") {
		t.Errorf("help output = %q", out)
	}
	types := mustRun(t, in, 1, "types")
	if !strings.Contains(types, "tictactoe") || !strings.Contains(types, "8x8") {
		t.Errorf("types output = %q", types)
	}
	if _, quit, err := in.Execute(context.Background(), 1, "QUIT"); !quit || err != nil {
		t.Errorf("quit = %v, %v", quit, err)
	}
}
