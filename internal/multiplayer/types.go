// Package multiplayer runs the match lifecycle: matchmaking, versioned
// play/forfeit/cancel operations against a Repository, turn timers that
// auto-forfeit stalled players, and fan-out of notifications to connected
// sessions. It never depends on transport types.
package multiplayer

import (
	"context"

	"github.com/vovakirdan/turn-arena/internal/board"
	"github.com/vovakirdan/turn-arena/internal/match"
)

// SessionID uniquely identifies one connection of a user (an SSH session or
// a WebSocket).
type SessionID string

// Repository is the persistence contract consumed by the Service.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	// GetMatchByID returns the stored match with the given id.
	GetMatchByID(ctx context.Context, id match.ID) (*match.Match, error)

	// GetRunningOrWaitingMatchByUser returns the non-terminal match the
	// user takes part in.
	GetRunningOrWaitingMatchByUser(ctx context.Context, user match.UserID) (*match.Match, error)

	// GetWaitingMatch returns the oldest waiting match of type t.
	GetWaitingMatch(ctx context.Context, t board.MatchType) (*match.Match, error)

	// AddMatch stores a new match. A taken id fails with DUPLICATE_MATCH_ID.
	AddMatch(ctx context.Context, m match.Match) (match.ID, error)

	// UpdateMatch replaces the stored snapshot of m.ID with m, provided the
	// stored version is still expectedVersion. Otherwise it fails with
	// VERSION_MISMATCH (or MATCH_NOT_FOUND when the row is gone) and stores
	// nothing.
	UpdateMatch(ctx context.Context, m match.Match, expectedVersion int64) (match.Match, error)

	// CancelSearch deletes matchID if it is still waiting and was started
	// by user.
	CancelSearch(ctx context.Context, user match.UserID, matchID match.ID) (CancelConfirmation, error)

	// GetStatistics aggregates the user's finished matches per match type.
	GetStatistics(ctx context.Context, user match.UserID) ([]Statistics, error)

	// RunningMatches lists every match currently in the running state.
	RunningMatches(ctx context.Context) ([]match.Match, error)
}

// CancelConfirmation acknowledges a cancelled search.
type CancelConfirmation struct {
	MatchID match.ID     `json:"match_id"`
	UserID  match.UserID `json:"user_id"`
}

// Statistics summarises one user's finished matches of one match type.
type Statistics struct {
	MatchType   board.MatchType `json:"match_type"`
	GamesPlayed int             `json:"games_played"`
	Wins        int             `json:"wins"`
	Draws       int             `json:"draws"`
	Losses      int             `json:"losses"`
	WinRate     float64         `json:"win_rate"`
}

// NewStatistics fills in Losses and WinRate from the raw counts.
func NewStatistics(t board.MatchType, played, wins, draws int) Statistics {
	s := Statistics{
		MatchType:   t,
		GamesPlayed: played,
		Wins:        wins,
		Draws:       draws,
		Losses:      played - wins - draws,
	}
	if played > 0 {
		s.WinRate = float64(wins) / float64(played)
	}
	return s
}
