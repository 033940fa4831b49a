package match

import (
	"fmt"
	"strconv"

	apperrors "github.com/vovakirdan/turn-arena/internal/errors"
)

// ID identifies a match. Valid ids are positive.
type ID int64

// String returns the decimal form of the id.
func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseID parses a decimal match id.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("invalid match id %q", s))
	}
	return ID(n), nil
}

// UserID identifies a human participant. Zero means "no user".
type UserID int64

// String returns the decimal form of the id.
func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// ParseUserID parses a decimal user id.
func ParseUserID(s string) (UserID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("invalid user id %q", s))
	}
	return UserID(n), nil
}

// State is the lifecycle tag of a match, derived from its slots and board.
type State uint8

const (
	StateWaiting State = iota // Only the initiator is present
	StateRunning              // Both players present, board running
	StateDraw
	StateWin
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateDraw:
		return "draw"
	case StateWin:
		return "win"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are accepted.
func (s State) Terminal() bool {
	return s == StateDraw || s == StateWin
}

// ParseState converts the output of State.String back to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "waiting":
		return StateWaiting, nil
	case "running":
		return StateRunning, nil
	case "draw":
		return StateDraw, nil
	case "win":
		return StateWin, nil
	default:
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown match state %q", s))
	}
}
