// Package sshcmd is a line-oriented SSH front end for the match service.
// The SSH username is the numeric user id; each input line is one command.
package sshcmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/turn-arena/internal/board"
	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
	"github.com/vovakirdan/turn-arena/internal/match"
	"github.com/vovakirdan/turn-arena/internal/multiplayer"
)

// MatchService is the part of multiplayer.Service the commands drive.
type MatchService interface {
	EnterMatch(ctx context.Context, user match.UserID, t board.MatchType) (match.Match, error)
	PlayMove(ctx context.Context, id match.ID, user match.UserID, mv board.Move, expectedVersion int64) (match.Match, error)
	Forfeit(ctx context.Context, id match.ID, user match.UserID) (match.Match, error)
	CancelSearch(ctx context.Context, user match.UserID, id match.ID) (multiplayer.CancelConfirmation, error)
	GetMatch(ctx context.Context, id match.ID) (match.Match, error)
	ActiveMatch(ctx context.Context, user match.UserID) (*match.Match, error)
	Statistics(ctx context.Context, user match.UserID) ([]multiplayer.Statistics, error)
}

const helpText = `commands:
  types                          list match types
  enter <type>                   join or open a match
  show [id]                      show a match (default: your active match)
  play <id> <square> <version>   play a move, e.g. play 12 3a 2
  forfeit <id>                   concede a match
  cancel <id>                    withdraw a waiting match
  stats                          your record per match type
  help                           this text
  quit                           leave`

// Interpreter executes text commands on behalf of one user.
type Interpreter struct {
	service MatchService
}

// NewInterpreter creates an interpreter over service.
func NewInterpreter(service MatchService) *Interpreter {
	return &Interpreter{service: service}
}

// Execute runs one command line. quit is true when the user asked to leave.
// Failed commands return the error; output is empty in that case.
func (in *Interpreter) Execute(ctx context.Context, user match.UserID, line string) (output string, quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		return helpText, false, nil
	case "quit", "exit":
		return "bye", true, nil
	case "types":
		return in.types(), false, nil
	case "enter":
		output, err = in.enter(ctx, user, args)
	case "show":
		output, err = in.show(ctx, user, args)
	case "play":
		output, err = in.play(ctx, user, args)
	case "forfeit":
		output, err = in.forfeit(ctx, user, args)
	case "cancel":
		output, err = in.cancel(ctx, user, args)
	case "stats":
		output, err = in.stats(ctx, user)
	default:
		err = usage(fmt.Sprintf("unknown command %q, try help", cmd))
	}
	return output, false, err
}

func (in *Interpreter) types() string {
	lines := make([]string, 0, len(board.Types()))
	for _, info := range board.Types() {
		lines = append(lines, fmt.Sprintf("%-12s %-14s %dx%d", info.Type, info.Title, info.Dimension, info.Dimension))
	}
	return strings.Join(lines, "\n")
}

func (in *Interpreter) enter(ctx context.Context, user match.UserID, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("enter <type>")
	}
	t, err := board.ParseMatchType(args[0])
	if err != nil {
		return "", err
	}
	m, err := in.service.EnterMatch(ctx, user, t)
	if err != nil {
		return "", err
	}
	return RenderMatch(m, user), nil
}

func (in *Interpreter) show(ctx context.Context, user match.UserID, args []string) (string, error) {
	switch len(args) {
	case 0:
		m, err := in.service.ActiveMatch(ctx, user)
		if err != nil {
			return "", err
		}
		if m == nil {
			return "no active match, try enter <type>", nil
		}
		return RenderMatch(*m, user), nil
	case 1:
		id, err := match.ParseID(args[0])
		if err != nil {
			return "", err
		}
		m, err := in.service.GetMatch(ctx, id)
		if err != nil {
			return "", err
		}
		return RenderMatch(m, user), nil
	default:
		return "", usage("show [id]")
	}
}

func (in *Interpreter) play(ctx context.Context, user match.UserID, args []string) (string, error) {
	if len(args) != 3 {
		return "", usage("play <id> <square> <version>")
	}
	id, err := match.ParseID(args[0])
	if err != nil {
		return "", err
	}
	version, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "", usage("version must be an integer")
	}

	current, err := in.service.GetMatch(ctx, id)
	if err != nil {
		return "", err
	}
	side, err := current.PlayerType(user)
	if err != nil {
		return "", apperrors.New(apperrors.CodeUserNotInThisMatch, err.Error())
	}
	sq, err := board.ParseSquare(args[1], current.Board.Dim())
	if err != nil {
		return "", err
	}

	m, err := in.service.PlayMove(ctx, id, user, board.NewMove(current.Type, side, sq), version)
	if err != nil {
		return "", err
	}
	return RenderMatch(m, user), nil
}

func (in *Interpreter) forfeit(ctx context.Context, user match.UserID, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("forfeit <id>")
	}
	id, err := match.ParseID(args[0])
	if err != nil {
		return "", err
	}
	m, err := in.service.Forfeit(ctx, id, user)
	if err != nil {
		return "", err
	}
	return RenderMatch(m, user), nil
}

func (in *Interpreter) cancel(ctx context.Context, user match.UserID, args []string) (string, error) {
	if len(args) != 1 {
		return "", usage("cancel <id>")
	}
	id, err := match.ParseID(args[0])
	if err != nil {
		return "", err
	}
	conf, err := in.service.CancelSearch(ctx, user, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("search for match %s cancelled", conf.MatchID), nil
}

func (in *Interpreter) stats(ctx context.Context, user match.UserID) (string, error) {
	stats, err := in.service.Statistics(ctx, user)
	if err != nil {
		return "", err
	}
	return RenderStatistics(stats), nil
}

func usage(msg string) error {
	return apperrors.New(apperrors.CodeInvalidArgument, "usage: "+msg)
}
